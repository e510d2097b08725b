package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/go-edvs/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return NewManager(ctx, logger.NewMockLogger().AllowAll())
}

func TestManager_StopAndWait(t *testing.T) {
	mgr := newTestManager(t)

	var iterations atomic.Int64
	var exited atomic.Int32

	err := mgr.Start("loop", func(ctx context.Context) bool {
		iterations.Add(1)
		time.Sleep(time.Millisecond)
		return true
	}, func() { exited.Add(1) })
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return iterations.Load() > 3 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, mgr.TaskCount())

	mgr.Stop()
	mgr.Wait()

	assert.Equal(t, 0, mgr.TaskCount())
	assert.Equal(t, int32(1), exited.Load())
}

func TestManager_TaskReturnsFalse(t *testing.T) {
	mgr := newTestManager(t)

	done := make(chan struct{})
	err := mgr.Start("once", func(ctx context.Context) bool {
		return false
	}, func() { close(done) })
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("exit func not called")
	}
	mgr.Wait()
	assert.Equal(t, 0, mgr.TaskCount())
}

func TestManager_PanicRecovered(t *testing.T) {
	mgr := newTestManager(t)

	var exited atomic.Bool
	err := mgr.Start("panic", func(ctx context.Context) bool {
		panic("boom")
	}, func() { exited.Store(true) })
	require.NoError(t, err)

	mgr.Wait()
	assert.True(t, exited.Load())
}

func TestManager_RestartAfterWait(t *testing.T) {
	mgr := newTestManager(t)

	for i := 0; i < 3; i++ {
		var ran atomic.Bool
		err := mgr.Start("session", func(ctx context.Context) bool {
			ran.Store(true)
			<-ctx.Done()
			return false
		}, nil)
		require.NoError(t, err)

		assert.Eventually(t, ran.Load, time.Second, time.Millisecond)
		mgr.Stop()
		mgr.Wait()
	}
}

func TestManager_StartAfterParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mgr := NewManager(ctx, logger.NewMockLogger().AllowAll())
	cancel()

	err := mgr.Start("late", func(ctx context.Context) bool { return true }, nil)
	assert.ErrorIs(t, err, ErrStopped)
}
