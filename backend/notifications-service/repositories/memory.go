package repositories

import (
	"context"
	"sync"

	"orbitplan/backend/notifications-service/models"

	"github.com/gocql/gocql"
)

// MemoryNotificationRepo mirrors the per-recipient layout in process. It backs
// NOTIFICATIONS_STORE=memory and the service tests.
type MemoryNotificationRepo struct {
	mu     sync.Mutex
	byUser map[string][]models.Notification
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{byUser: make(map[string][]models.Notification)}
}

func (r *MemoryNotificationRepo) Insert(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = gocql.UUIDFromTime(n.CreatedAt).String()
	for _, userID := range n.Team {
		row := *n
		row.Team = append([]string{}, n.Team...)
		row.IsRead = false
		r.byUser[userID] = append([]models.Notification{row}, r.byUser[userID]...)
	}
	return nil
}

func (r *MemoryNotificationRepo) FindByRecipient(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Notification, len(r.byUser[userID]))
	copy(out, r.byUser[userID])
	return out, nil
}

func (r *MemoryNotificationRepo) MarkRead(_ context.Context, userID, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.byUser[userID]
	for i := range rows {
		if rows[i].ID == notificationID {
			rows[i].IsRead = true
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *MemoryNotificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	rows := r.byUser[userID]
	for i := range rows {
		if !rows[i].IsRead {
			rows[i].IsRead = true
			changed++
		}
	}
	return changed, nil
}
