package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/notify"
	"holasmile/cmd/internal/utils"
)

type WarrantyExpirer interface {
	ExpireEndedBefore(ctx context.Context, day time.Time, now int64) (int64, error)
}

type ExpiringSupplies interface {
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.Supply, error)
}

type RoleDirectory interface {
	FindIDsByRole(ctx context.Context, role string) ([]int, error)
}

type Notifier interface {
	FanOut(ctx context.Context, audience notify.AudienceFunc, build func(userID int) notify.Message) notify.Report
}

// Sweeper holds the periodic maintenance tasks.
type Sweeper struct {
	Warranties WarrantyExpirer
	Supplies   ExpiringSupplies
	Users      RoleDirectory
	Notifier   Notifier
	WindowDays int
	Now        func() time.Time
}

// ExpireWarranties flips active warranty cards that ended before today to expired.
func (s *Sweeper) ExpireWarranties(ctx context.Context) (int64, error) {
	now := s.now()
	count, err := s.Warranties.ExpireEndedBefore(ctx, utils.TruncateDay(now), now.UnixMilli())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Infof("expired %d warranty card(s)", count)
	}
	return count, nil
}

// RemindExpiringSupplies tells the owners about stock expiring within the window.
// Nothing is sent when no supply qualifies.
func (s *Sweeper) RemindExpiringSupplies(ctx context.Context) (int, error) {
	today := utils.TruncateDay(s.now())
	until := today.AddDate(0, 0, s.WindowDays)

	supplies, err := s.Supplies.FindExpiringBetween(ctx, today, until)
	if err != nil {
		return 0, err
	}
	if len(supplies) == 0 {
		return 0, nil
	}

	first := supplies[0]
	body := fmt.Sprintf("%d supply item(s) expire by %s; earliest is %s on %s",
		len(supplies), utils.FormatDate(until), first.Name, utils.FormatDate(time.Time(*first.ExpiryDate)))

	audience := func(ctx context.Context) ([]int, error) {
		return s.Users.FindIDsByRole(ctx, auth.RoleOwner.String())
	}
	s.Notifier.FanOut(ctx, audience, func(int) notify.Message {
		return notify.Message{
			Title:     "Supplies expiring soon",
			Body:      body,
			Category:  "supply",
			TargetURL: "supplies",
		}
	})
	return len(supplies), nil
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Start registers the sweeps on a cron scheduler and starts it. Stop the returned scheduler on shutdown.
func Start(s *Sweeper, warrantySpec, supplySpec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(warrantySpec, func() {
		if _, err := s.ExpireWarranties(context.Background()); err != nil {
			log.Errorf("warranty expiry sweep failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("warranty sweep schedule %q: %w", warrantySpec, err)
	}

	if _, err := c.AddFunc(supplySpec, func() {
		if _, err := s.RemindExpiringSupplies(context.Background()); err != nil {
			log.Errorf("supply expiry reminder failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("supply reminder schedule %q: %w", supplySpec, err)
	}

	c.Start()
	log.Infof("cron jobs scheduled (warranty %q, supplies %q)", warrantySpec, supplySpec)
	return c, nil
}
