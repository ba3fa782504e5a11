package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"orbitplan/backend/notifications-service/models"
	"orbitplan/backend/notifications-service/repositories"
	"orbitplan/backend/utils"
)

func newService() *NotificationService {
	svc := NewNotificationService(repositories.NewMemoryNotificationRepo())
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc
}

func TestNotifyAddressesWholeTeam(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	n, err := svc.Notify(ctx, models.NotifyRequest{Team: []string{"u1", "u2", "u1"}, Text: "assigned", TaskID: "t1"})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(n.Team) != 2 || n.ID == "" {
		t.Errorf("notification = %+v", n)
	}

	for _, id := range []string{"u1", "u2"} {
		got, _ := svc.List(ctx, utils.Caller{UserID: id}, false)
		if len(got) != 1 || got[0].IsRead || got[0].TaskID != "t1" {
			t.Errorf("List(%s) = %+v", id, got)
		}
	}
	if got, _ := svc.List(ctx, utils.Caller{UserID: "u3"}, false); len(got) != 0 {
		t.Errorf("outsider sees %d notifications", len(got))
	}
}

func TestNotifyValidation(t *testing.T) {
	svc := newService()
	for _, req := range []models.NotifyRequest{
		{Text: "x"},
		{Team: []string{"u1"}},
		{Team: []string{""}, Text: "x"},
		{Team: []string{" ", "\t"}, Text: "x"},
	} {
		_, err := svc.Notify(context.Background(), req)
		var verr *utils.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Notify(%+v) error = %v, want ValidationError", req, err)
		}
	}
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	u := utils.Caller{UserID: "u1"}
	for i := 0; i < 3; i++ {
		if _, err := svc.Notify(ctx, models.NotifyRequest{Team: []string{"u1", "u2"}, Text: "update"}); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}

	n, err := svc.MarkRead(ctx, u, models.ReadAll, "")
	if err != nil || n != 3 {
		t.Fatalf("MarkRead(all) = %d, %v; want 3", n, err)
	}

	unread, _ := svc.List(ctx, u, true)
	if len(unread) != 0 {
		t.Errorf("unread after mark-all = %d, want 0", len(unread))
	}
	others, _ := svc.List(ctx, utils.Caller{UserID: "u2"}, true)
	if len(others) != 3 {
		t.Errorf("u2 unread = %d, read state must be per recipient", len(others))
	}

	if n, _ := svc.MarkRead(ctx, u, models.ReadAll, ""); n != 0 {
		t.Errorf("second MarkRead(all) = %d, want 0", n)
	}
}

func TestMarkOneRead(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	u := utils.Caller{UserID: "u1"}
	first, _ := svc.Notify(ctx, models.NotifyRequest{Team: []string{"u1"}, Text: "first"})
	svc.Notify(ctx, models.NotifyRequest{Team: []string{"u1"}, Text: "second"})

	if _, err := svc.MarkRead(ctx, u, models.ReadOne, first.ID); err != nil {
		t.Fatalf("MarkRead(one) error = %v", err)
	}
	if _, err := svc.MarkRead(ctx, u, models.ReadOne, first.ID); err != nil {
		t.Errorf("MarkRead(one) on read notification error = %v, want no-op", err)
	}

	all, _ := svc.List(ctx, u, false)
	if len(all) != 2 || all[0].Text != "second" {
		t.Fatalf("List() = %+v, want newest first", all)
	}
	if all[0].IsRead || !all[1].IsRead {
		t.Errorf("read flags = %v, %v", all[0].IsRead, all[1].IsRead)
	}

	_, err := svc.MarkRead(ctx, u, models.ReadOne, "missing")
	var nerr *utils.NotFoundError
	if !errors.As(err, &nerr) {
		t.Errorf("MarkRead(unknown) error = %v, want NotFoundError", err)
	}
	_, err = svc.MarkRead(ctx, utils.Caller{UserID: "u2"}, models.ReadOne, first.ID)
	if !errors.As(err, &nerr) {
		t.Errorf("MarkRead() by non-recipient error = %v, want NotFoundError", err)
	}
}

func TestMarkReadScope(t *testing.T) {
	svc := newService()
	_, err := svc.MarkRead(context.Background(), utils.Caller{UserID: "u1"}, "some", "")
	var verr *utils.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("MarkRead(bad scope) error = %v, want ValidationError", err)
	}

	_, err = svc.MarkRead(context.Background(), utils.Caller{}, models.ReadAll, "")
	var aerr *utils.AuthError
	if !errors.As(err, &aerr) {
		t.Errorf("MarkRead() without caller error = %v, want AuthError", err)
	}
}
