package service

import (
	"context"
	"testing"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/utils/apierror"
)

type fakeNotifications struct {
	rows map[int]*entity.Notification
}

func (f *fakeNotifications) FindByUserID(_ context.Context, userID int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for id := 1; id <= len(f.rows); id++ {
		if n := f.rows[id]; n != nil && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) FindByID(_ context.Context, id int) (*entity.Notification, error) {
	return f.rows[id], nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, userID int) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID int) (bool, error) {
	row := f.rows[id]
	if row == nil || row.UserID != userID {
		return false, nil
	}
	row.IsRead = true
	return true, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID int) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func TestNotificationService_Inbox(t *testing.T) {
	repo := &fakeNotifications{rows: map[int]*entity.Notification{
		1: {ID: 1, UserID: 70, Title: "Warranty updated"},
		2: {ID: 2, UserID: 70, Title: "New prescription"},
		3: {ID: 3, UserID: 71, Title: "Someone else"},
	}}
	svc := NewNotificationService(repo)
	patient := identity(70, auth.RolePatient)

	list, apierr := svc.GetNotifications(context.Background(), patient)
	expectOK(t, apierr)
	if len(list) != 2 || list[0].Title != "Warranty updated" {
		t.Fatalf("unexpected inbox %+v", list)
	}

	count, apierr := svc.CountUnread(context.Background(), patient)
	expectOK(t, apierr)
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	expectOK(t, svc.MarkAsRead(context.Background(), patient, 1))
	expectKind(t, svc.MarkAsRead(context.Background(), patient, 3), apierror.KindNotFound)
	expectKind(t, svc.MarkAsRead(context.Background(), patient, 42), apierror.KindNotFound)
	if repo.rows[3].IsRead {
		t.Fatal("foreign notification must stay unread")
	}

	marked, apierr := svc.MarkAllAsRead(context.Background(), patient)
	expectOK(t, apierr)
	if marked != 1 {
		t.Fatalf("expected 1 newly read, got %d", marked)
	}

	_, apierr = svc.GetNotifications(context.Background(), nil)
	expectKind(t, apierr, apierror.KindUnauthorized)
}
