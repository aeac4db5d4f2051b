package worker

import (
	"context"
	"sync"
)

// Worker is a long-running task that returns when ctx is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager starts and supervises a set of workers.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start runs every worker until ctx is cancelled or one of them fails, then
// waits for all of them to return.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, len(m.workers))
	for _, w := range m.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				errs <- err
				cancel()
			}
		}(w)
	}
	<-ctx.Done()
	wg.Wait()
	close(errs)
	// Report the first failure, if any.
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
