package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type flakyWorker struct {
	mu   sync.Mutex
	runs int
}

func (w *flakyWorker) Run(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runs++
	if w.runs == 1 {
		panic("boom")
	}
	return nil
}

func (w *flakyWorker) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func Test_Supervisor_Restarts_After_Panic(t *testing.T) {
	req := require.New(t)
	worker := &flakyWorker{}
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not finish")
	}
	req.Equal(2, worker.Runs())
}

type blockedWorker struct{}

func (blockedWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func Test_Supervisor_Stops_On_Cancellation(t *testing.T) {
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)
	sup.Add(blockedWorker{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
}
