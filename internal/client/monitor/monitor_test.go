package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carechain/carechain/internal/logging"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakePinger struct {
	up atomic.Bool
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.up.Load() {
		return nil
	}
	return errors.New("unreachable")
}

func TestInitialState_ReadFromProbe(t *testing.T) {
	p := &fakePinger{}
	p.up.Store(true)
	m := New(p, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // seed probe only, no ticks
	m.Start(ctx)
	require.True(t, m.Online())

	p.up.Store(false)
	m2 := New(p, time.Hour, testLogger())
	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	m2.Start(ctx2)
	require.False(t, m2.Online(), "initial state is probed, not assumed online")
}

func TestTick_FiresCallbackOncePerTransition(t *testing.T) {
	p := &fakePinger{}
	m := New(p, time.Hour, testLogger())

	var fired atomic.Int32
	m.OnOnline(func(ctx context.Context) { fired.Add(1) })

	ctx := context.Background()

	// offline -> offline: nothing
	m.tick(ctx)
	require.Zero(t, fired.Load())
	require.False(t, m.Online())

	// offline -> online: exactly one callback
	p.up.Store(true)
	m.tick(ctx)
	require.Equal(t, int32(1), fired.Load())
	require.True(t, m.Online())

	// online -> online: still one
	m.tick(ctx)
	m.tick(ctx)
	require.Equal(t, int32(1), fired.Load())

	// online -> offline: state flips, no callback
	p.up.Store(false)
	m.tick(ctx)
	require.Equal(t, int32(1), fired.Load())
	require.False(t, m.Online())

	// offline -> online again: second callback
	p.up.Store(true)
	m.tick(ctx)
	require.Equal(t, int32(2), fired.Load())
}
