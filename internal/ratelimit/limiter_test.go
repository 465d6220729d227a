package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitBriefly waits for api with a deadline too short for a limited second call.
func waitBriefly(l *Limiter, api API) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, api)
}

func TestLimiter_UnknownAPIIsUnlimited(t *testing.T) {
	l := New(nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, waitBriefly(l, APIPlaid))
	}
	require.NoError(t, l.Wait(context.Background(), APITimeAPI))
}

func TestLimiter_AllowsBurstOfOne(t *testing.T) {
	l := New(map[API]float64{APIPlaid: 0.001})

	assert.NoError(t, waitBriefly(l, APIPlaid))
	assert.Error(t, waitBriefly(l, APIPlaid))
	assert.NoError(t, waitBriefly(l, APITimeAPI))
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := New(map[API]float64{APIPlaid: 0.001})
	require.NoError(t, l.Wait(context.Background(), APIPlaid))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Wait(ctx, APIPlaid), context.Canceled)
}

func TestLimiter_SetNonPositiveRemovesLimit(t *testing.T) {
	l := New(map[API]float64{APIPlaid: 0.001})
	l.Set(APIPlaid, 0)

	for i := 0; i < 5; i++ {
		assert.NoError(t, waitBriefly(l, APIPlaid))
	}
}
