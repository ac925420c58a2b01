package feb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrAcquisition marks a game whose feed could not be fetched within the
// retry budget.
var ErrAcquisition = errors.New("acquisition failed")

// RetryPolicy configures exponential backoff between attempts.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration

	// Notify, when set, is called before each wait.
	Notify func(attempt int, err error, wait time.Duration)
}

// Delay returns the wait after the n-th failed attempt (0-based): base·2^n.
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return p.BaseDelay << uint(n)
}

// Retry calls fn until it succeeds, up to 1+MaxRetries attempts, and returns
// the number of attempts made. The final failure is marked ErrAcquisition. A
// cancelled ctx stops waiting and returns the context error.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) error) (int, error) {
	total := 1 + max(p.MaxRetries, 0)
	var lastErr error
	for attempt := 1; attempt <= total; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, errors.Wrap(err, "retry cancelled")
		}
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == total {
			break
		}

		wait := p.Delay(attempt - 1)
		if p.Notify != nil {
			p.Notify(attempt, lastErr, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Wrap(ctx.Err(), "retry cancelled")
		case <-timer.C:
		}
	}
	return total, errors.Mark(errors.Wrapf(lastErr, "giving up after %d attempts", total), ErrAcquisition)
}
