package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPoolRunsEveryTask(t *testing.T) {
	p := NewPool(3, 2, nil)
	var mu sync.Mutex
	count := 0
	for i := 0; i < 5; i++ {
		ok := p.Submit(Task{Name: "count", Run: func(context.Context) error {
			mu.Lock()
			count++
			mu.Unlock()
			return nil
		}})
		require.True(t, ok)
	}
	p.Stop()
	require.Equal(t, 5, count)
}

func TestPoolLogsFailuresAndPanics(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewPool(1, 0, zap.New(core))

	p.Submit(Task{Name: "fails", Run: func(context.Context) error { return errors.New("disk gone") }})
	p.Submit(Task{Name: "panics", Run: func(context.Context) error { panic("boom") }})
	ran := false
	p.Submit(Task{Name: "after", Run: func(context.Context) error { ran = true; return nil }})
	p.Stop()

	require.True(t, ran)
	require.Equal(t, 1, logs.FilterMessage("task failed").Len())
	require.Equal(t, 1, logs.FilterMessage("task panicked").Len())
}

func TestPoolRejectsAfterStop(t *testing.T) {
	p := NewPool(0, 0, nil)
	p.Stop()
	p.Stop()
	require.False(t, p.Submit(Task{Name: "late", Run: func(context.Context) error { return nil }}))
	require.False(t, p.Submit(Task{Name: "nil"}))
}
