package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// BestEffortEffect is one independent side effect, typically an auxiliary
// cache write.
type BestEffortEffect struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunBestEffortBatch runs the effects concurrently and waits for all of them.
// Individual failures are logged and swallowed; they never affect the
// caller's result. The primary response path must not depend on anything a
// batch writes.
func RunBestEffortBatch(ctx context.Context, logger *logrus.Logger, effects []BestEffortEffect) {
	var wg sync.WaitGroup
	for _, effect := range effects {
		wg.Add(1)
		go func(e BestEffortEffect) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.WithField("effect", e.Name).Errorf("best-effort effect panicked: %v", r)
				}
			}()
			if err := e.Run(ctx); err != nil {
				logger.WithField("effect", e.Name).Warnf("best-effort effect failed: %v", err)
			}
		}(effect)
	}
	wg.Wait()
}
