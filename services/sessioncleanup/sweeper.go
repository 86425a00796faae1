package sessioncleanup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
	"github.com/inyourvase/flowershop/services/checkout"
)

const schedule = "@every 5m"

// Sweeper deletes checkout sessions that were abandoned mid-flow. Unconfirmed
// payment intents are left alone; they lapse on the gateway's own schedule.
type Sweeper struct {
	sessionStore mystore.Store[checkout.CheckoutSession]
	ttl          time.Duration
	nower        mytime.Nower
	cron         *cron.Cron
	logger       mylog.Logger
}

func NewSweeper(sessionStore mystore.Store[checkout.CheckoutSession], ttl time.Duration, nower mytime.Nower) *Sweeper {
	return &Sweeper{
		sessionStore: sessionStore,
		ttl:          ttl,
		nower:        nower,
		cron:         cron.New(),
		logger:       mylog.New("sessioncleanup"),
	}
}

func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(schedule, func() {
		c := context.Background()
		err := s.Sweep(c)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityWarn, "Error sweeping expired checkout sessions: %s", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) Sweep(c context.Context) error {
	now := s.nower.Now()
	deadline := now.Add(-s.ttl)

	sessions, err := s.sessionStore.List(c)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	deleted := 0
	for _, session := range sessions {
		if session.Status != checkout.SessionStatusActive {
			continue
		}
		if !lastTouched(session).Before(deadline) {
			continue
		}

		err = s.sessionStore.Delete(c, session.UID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Log(c, "", mylog.SeverityInfo, "Swept %d expired checkout sessions", deleted)
	}

	return nil
}

func lastTouched(session checkout.CheckoutSession) time.Time {
	if session.LastModified != nil {
		return *session.LastModified
	}
	return session.CreatedAt
}
