package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"orbitplan/backend/notifications-service/models"
	"orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"

	"github.com/go-playground/validator/v10"
)

// NotificationStore keeps notifications per recipient. MarkRead returns
// models.ErrNotFound when the id is not addressed to the user.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	// FindByRecipient returns the user's notifications, newest first.
	FindByRecipient(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type NotificationService struct {
	store    NotificationStore
	validate *validator.Validate
	now      func() time.Time
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Notify creates one notification for the whole team, unread by everyone.
func (ns *NotificationService) Notify(ctx context.Context, req models.NotifyRequest) (*models.Notification, error) {
	if err := ns.validate.Struct(req); err != nil || strings.TrimSpace(req.Text) == "" {
		return nil, utils.NewValidationError("Team and text are required")
	}

	team := uniqueRecipients(req.Team)
	if len(team) == 0 {
		return nil, utils.NewValidationError("Team and text are required")
	}

	n := &models.Notification{
		TaskID:    req.TaskID,
		Text:      req.Text,
		Team:      team,
		CreatedAt: ns.now(),
	}
	if err := ns.store.Insert(ctx, n); err != nil {
		return nil, utils.NewStorageError("insert notification", err)
	}
	logging.Logger.Infof("Event ID: NOTIFICATION_CREATED, Description: Notification %s sent to %d recipients", n.ID, len(n.Team))
	return n, nil
}

// List returns the caller's notifications, newest first. With unreadOnly set
// read ones are left out.
func (ns *NotificationService) List(ctx context.Context, caller utils.Caller, unreadOnly bool) ([]models.Notification, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	all, err := ns.store.FindByRecipient(ctx, caller.UserID)
	if err != nil {
		return nil, utils.NewStorageError("list notifications", err)
	}
	if !unreadOnly {
		return all, nil
	}

	unread := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// MarkRead marks one notification (scope "one") or all of the caller's
// notifications (scope "all") read and returns how many were addressed.
// Marking an already read notification is not an error.
func (ns *NotificationService) MarkRead(ctx context.Context, caller utils.Caller, scope, id string) (int, error) {
	if err := caller.Require(); err != nil {
		return 0, err
	}

	switch scope {
	case models.ReadAll:
		n, err := ns.store.MarkAllRead(ctx, caller.UserID)
		if err != nil {
			return 0, utils.NewStorageError("mark all notifications read", err)
		}
		return n, nil
	case models.ReadOne:
		if strings.TrimSpace(id) == "" {
			return 0, utils.NewValidationError("Notification id is required")
		}
		err := ns.store.MarkRead(ctx, caller.UserID, strings.TrimSpace(id))
		if errors.Is(err, models.ErrNotFound) {
			return 0, utils.NewNotFoundError("Notification not found")
		}
		if err != nil {
			return 0, utils.NewStorageError("mark notification read", err)
		}
		return 1, nil
	}
	return 0, utils.NewValidationError("Invalid isReadType value")
}

func uniqueRecipients(team []string) []string {
	seen := make(map[string]bool, len(team))
	out := make([]string, 0, len(team))
	for _, id := range team {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
