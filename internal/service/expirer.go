package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"go.uber.org/zap"
)

const defaultExpirerInterval = 1 * time.Hour

// ExpirerService sweeps expired cache entries in the background. Expired
// entries are already invisible to lookups; the sweep keeps the table and
// its index from growing without bound.
type ExpirerService struct {
	cacheStore domain.CacheStore
	logger     *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewExpirerService(cs domain.CacheStore, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		cacheStore: cs,
		logger:     logger,
		interval:   defaultExpirerInterval,
		stopCh:     make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the sweep on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("cache expirer started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("cache expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *ExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *ExpirerService) run(ctx context.Context) {
	deleted, err := s.cacheStore.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("failed to delete expired cache entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("deleted expired cache entries", zap.Int64("count", deleted))
	}
}
