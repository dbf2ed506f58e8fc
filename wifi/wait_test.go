package wifi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForEventualSuccess(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(), "test condition", 5, time.Millisecond,
		func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitForTimeout(t *testing.T) {
	err := WaitFor(context.Background(), "test condition", 3, time.Millisecond,
		func(context.Context) (bool, error) { return false, nil })
	var timeout *WaitTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "test condition", timeout.What)
}

func TestWaitForCheckError(t *testing.T) {
	boom := errors.New("boom")
	err := WaitFor(context.Background(), "test condition", 3, time.Millisecond,
		func(context.Context) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestWaitForContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitFor(ctx, "test condition", 3, time.Minute,
		func(context.Context) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, context.Canceled)
}
