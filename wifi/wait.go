package wifi

import (
	"context"
	"time"
)

// WaitFor polls check on a short backoff until it reports true, the attempt
// budget runs out, or ctx is cancelled. Adapters use it to verify that a
// requested state change (e.g. a radio toggle) actually took effect.
func WaitFor(ctx context.Context, what string, attempts int, backoff time.Duration, check func(ctx context.Context) (bool, error)) error {
	for i := 0; i < attempts; i++ {
		ok, err := check(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return &WaitTimeoutError{What: what}
}
