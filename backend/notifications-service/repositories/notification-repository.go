package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orbitplan/backend/notifications-service/models"
	"orbitplan/backend/utils/logging"

	"github.com/gocql/gocql"
)

// NotificationRepo keeps one row per recipient, so a user's notifications
// share a partition and clustering on the timeuuid id gives newest first.
type NotificationRepo struct {
	session *gocql.Session
}

// NewNotificationRepo creates keyspace if needed and connects to it.
func NewNotificationRepo(hosts []string, keyspace string) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Timeout = 5 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to keyspace %s: %w", keyspace, err)
	}

	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Connected to Cassandra keyspace %s", keyspace)
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: DB_DISCONNECTED, Description: Cassandra session closed")
}

func (nr *NotificationRepo) CreateTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications_by_user (
			user_id TEXT,
			id TIMEUUID,
			task_id TEXT,
			text TEXT,
			team LIST<TEXT>,
			is_read BOOLEAN,
			created_at TIMESTAMP,
			PRIMARY KEY ((user_id), id)
		) WITH CLUSTERING ORDER BY (id DESC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}
	return nil
}

// Insert writes n once for each team member in a single logged batch.
func (nr *NotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	id := gocql.UUIDFromTime(n.CreatedAt)
	n.ID = id.String()

	batch := nr.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, userID := range n.Team {
		batch.Query(
			`INSERT INTO notifications_by_user (user_id, id, task_id, text, team, is_read, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, id, n.TaskID, n.Text, n.Team, false, n.CreatedAt,
		)
	}
	return nr.session.ExecuteBatch(batch)
}

func (nr *NotificationRepo) FindByRecipient(ctx context.Context, userID string) ([]models.Notification, error) {
	iter := nr.session.Query(
		`SELECT id, task_id, text, team, is_read, created_at
		 FROM notifications_by_user WHERE user_id = ?`, userID,
	).WithContext(ctx).Iter()

	notifications := []models.Notification{}
	var (
		id gocql.UUID
		n  models.Notification
	)
	for iter.Scan(&id, &n.TaskID, &n.Text, &n.Team, &n.IsRead, &n.CreatedAt) {
		n.ID = id.String()
		notifications = append(notifications, n)
		n = models.Notification{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one notification of userID read. Already read rows are left
// as they are.
func (nr *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return models.ErrNotFound
	}

	var isRead bool
	err = nr.session.Query(
		`SELECT is_read FROM notifications_by_user WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Scan(&isRead)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.ErrNotFound
	}
	if err != nil || isRead {
		return err
	}

	return nr.session.Query(
		`UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Exec()
}

// MarkAllRead flags every unread notification of userID and returns how many
// changed.
func (nr *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	iter := nr.session.Query(
		`SELECT id, is_read FROM notifications_by_user WHERE user_id = ?`, userID,
	).WithContext(ctx).Iter()

	var (
		unread []gocql.UUID
		id     gocql.UUID
		isRead bool
	)
	for iter.Scan(&id, &isRead) {
		if !isRead {
			unread = append(unread, id)
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	if len(unread) == 0 {
		return 0, nil
	}

	batch := nr.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	for _, id := range unread {
		batch.Query(`UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND id = ?`, userID, id)
	}
	if err := nr.session.ExecuteBatch(batch); err != nil {
		return 0, err
	}
	return len(unread), nil
}
