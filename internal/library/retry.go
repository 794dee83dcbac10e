package library

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"library/internal/entity"
)

// Exhaustion decides what happens once a RetryPolicy runs out of attempts.
type Exhaustion int

const (
	// RaiseOnExhaustion returns ErrNotificationFailed to the caller.
	RaiseOnExhaustion Exhaustion = iota
	// LogOnExhaustion writes one "Notification failed!" line and reports success.
	LogOnExhaustion
)

func (e Exhaustion) String() string {
	if e == LogOnExhaustion {
		return "log"
	}
	return "raise"
}

// RetryPolicy bounds notification delivery. Attempts run back to back with no
// delay. Policies allowing more than one attempt log every failed attempt.
type RetryPolicy struct {
	MaxAttempts  int
	OnExhaustion Exhaustion
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (s *Service) deliver(ctx context.Context, channel entity.NotificationService, message string, p RetryPolicy) error {
	maxAttempts := p.attempts()
	attempt := 0

	send := func() error {
		attempt++
		s.metrics.NotificationAttempt()

		err := channel.SendNotification(ctx, message)
		if err == nil {
			return nil
		}
		// Only the caller's context ends the loop early. A channel timeout
		// is an ordinary failed attempt.
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if maxAttempts > 1 {
			s.logger.Printf(msgNotificationRetryLine, attempt, maxAttempts)
		}
		return err
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(maxAttempts-1)),
		ctx,
	)
	err := backoff.Retry(send, schedule)
	if err == nil {
		return nil
	}

	s.metrics.NotificationFailed(p.OnExhaustion.String())
	if p.OnExhaustion == LogOnExhaustion {
		s.logger.Println(msgNotificationFailed)
		return nil
	}
	return wrapError(ErrNotificationFailed, msgNotificationFailed, err)
}
