package pacer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mara-voss/dualpane/internal/pacer"
	"github.com/stretchr/testify/require"
)

func TestCallSucceedsWithoutRetry(t *testing.T) {
	p := pacer.New(3, pacer.NewDefault(pacer.MinSleep(time.Microsecond), pacer.MaxSleep(time.Millisecond)))
	calls := 0
	err := p.Call(func() (bool, error) {
		calls++
		return false, nil
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestCallRetriesUpToLimit(t *testing.T) {
	p := pacer.New(2, pacer.NewDefault(pacer.MinSleep(time.Microsecond), pacer.MaxSleep(time.Millisecond)))
	calls := 0
	wantErr := errors.New("boom")
	err := p.Call(func() (bool, error) {
		calls++
		return true, wantErr
	}, nil)
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 3, calls) // initial + 2 retries
}

func TestCallStopsOnStopChannel(t *testing.T) {
	p := pacer.New(5, pacer.NewDefault(pacer.MinSleep(50*time.Millisecond), pacer.MaxSleep(time.Second)))
	stop := make(chan struct{})
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		close(stop)
	}()
	err := p.Call(func() (bool, error) {
		calls++
		return true, errors.New("always fails")
	}, stop)
	require.Error(t, err)
	require.Less(t, calls, 6)
}

func TestForHostReturnsSameInstance(t *testing.T) {
	a := pacer.ForHost("example.com:22")
	b := pacer.ForHost("example.com:22")
	require.Same(t, a, b)
}
