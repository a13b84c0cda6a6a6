package observability

import (
	"context"
	"sync"
)

var (
	cleanupWaitGroup sync.WaitGroup
)

// WaitForCleanup waits until all observability long-running goroutines shut
// down cleanly or until the provided context signals done.
func WaitForCleanup(ctx context.Context) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		cleanupWaitGroup.Wait()
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
}
