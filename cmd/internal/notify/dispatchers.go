package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"gopkg.in/gomail.v2"

	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/utils"
)

type NotificationStore interface {
	Create(ctx context.Context, notification *entity.Notification) error
}

// StoreDispatcher writes messages into the in-app inbox.
type StoreDispatcher struct {
	Store NotificationStore
}

func (s *StoreDispatcher) Dispatch(ctx context.Context, msg Message) error {
	return s.Store.Create(ctx, &entity.Notification{
		UserID:          msg.RecipientUserID,
		Title:           msg.Title,
		Message:         msg.Body,
		Type:            msg.Category,
		IsRead:          false,
		RelatedObjectID: msg.RelatedObjectID,
		MappingURL:      msg.TargetURL,
		CreatedAt:       utils.NowUTC(),
	})
}

// Channel is the redis channel realtime clients of userID subscribe to.
func Channel(userID int) string {
	return "notifications:" + strconv.Itoa(userID)
}

// PubSubDispatcher pushes messages to connected clients through redis PUBLISH.
type PubSubDispatcher struct {
	Client redis.UniversalClient
}

func (p *PubSubDispatcher) Dispatch(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.Client.Publish(ctx, Channel(msg.RecipientUserID), payload).Err()
}

type EmailLookup interface {
	FindByID(ctx context.Context, id int) (*entity.User, error)
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailDispatcher emails the message to the recipient's address. Users without one are skipped.
type MailDispatcher struct {
	Users  EmailLookup
	Sender Sender
	From   string
}

func NewMailDispatcher(users EmailLookup, host string, port int, user, pass, from string) *MailDispatcher {
	return &MailDispatcher{
		Users:  users,
		Sender: gomail.NewDialer(host, port, user, pass),
		From:   from,
	}
}

func (m *MailDispatcher) Dispatch(ctx context.Context, msg Message) error {
	user, err := m.Users.FindByID(ctx, msg.RecipientUserID)
	if err != nil {
		return err
	}
	if user == nil || user.Email == "" {
		return nil
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.From)
	mail.SetHeader("To", user.Email)
	mail.SetHeader("Subject", msg.Title)
	mail.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() { done <- m.Sender.DialAndSend(mail) }()
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Multi dispatches to every channel in order and joins their errors.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, msg Message) error {
	var errs []error
	for i, d := range m {
		if err := d.Dispatch(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
