package notify

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// Message is one notification addressed to one user.
type Message struct {
	RecipientUserID int    `json:"recipient_user_id"`
	Title           string `json:"title"`
	Body            string `json:"body"`
	Category        string `json:"category"`
	RelatedObjectID *int   `json:"related_object_id,omitempty"`
	TargetURL       string `json:"target_url"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// AudienceFunc resolves the user ids a fan-out is addressed to.
type AudienceFunc func(ctx context.Context) ([]int, error)

// Report summarizes one fan-out. It is informational only.
type Report struct {
	Batch      string
	Recipients int
	Delivered  int
	Failed     int
}

// Notifier delivers messages on a best-effort basis: every recipient gets one attempt,
// attempts run concurrently, and FanOut returns once all of them finished.
// Failures are logged and never reach the caller. There is no retry.
type Notifier struct {
	dispatcher  Dispatcher
	concurrency int
	timeout     time.Duration
}

func NewNotifier(dispatcher Dispatcher, concurrency int, timeout time.Duration) *Notifier {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{dispatcher: dispatcher, concurrency: concurrency, timeout: timeout}
}

// FanOut sends build(id) to every distinct user returned by audience.
// Dispatch is detached from ctx cancellation so an aborted request does not cut delivery short.
func (n *Notifier) FanOut(ctx context.Context, audience AudienceFunc, build func(userID int) Message) Report {
	report := Report{Batch: uuid.NewString()}
	ctx = context.WithoutCancel(ctx)

	ids, err := n.resolve(ctx, audience)
	if err != nil {
		log.Warnf("notify batch %s: could not resolve audience: %v", report.Batch, err)
		return report
	}
	report.Recipients = len(ids)

	var delivered, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(n.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := n.deliver(ctx, id, build); err != nil {
				failed.Add(1)
				log.Warnf("notify batch %s: delivery to user %d failed: %v", report.Batch, id, err)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.Delivered = int(delivered.Load())
	report.Failed = int(failed.Load())
	return report
}

// Send delivers a single message with the same guarantees as FanOut.
func (n *Notifier) Send(ctx context.Context, msg Message) Report {
	return n.FanOut(ctx, Users(msg.RecipientUserID), func(int) Message { return msg })
}

func (n *Notifier) resolve(ctx context.Context, audience AudienceFunc) (ids []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	raw, err := audience(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(raw))
	for _, id := range raw {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *Notifier) deliver(ctx context.Context, userID int, build func(int) Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	msg := build(userID)
	msg.RecipientUserID = userID

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.dispatcher.Dispatch(ctx, msg)
}

// Users is an audience made of fixed user ids.
func Users(ids ...int) AudienceFunc {
	return func(context.Context) ([]int, error) {
		return ids, nil
	}
}
