package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncSaver decouples snapshot writes from the caller. Enqueue never
// blocks: saves run on one background goroutine, and a snapshot enqueued
// while a save is in flight replaces any still-queued snapshot, so the
// store always converges on the latest state (last-write-wins).
type AsyncSaver struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]float64

	kick chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAsyncSaver creates a saver over the given store. timeout bounds each
// individual Save call.
func NewAsyncSaver(st Store, timeout time.Duration, logger *slog.Logger) *AsyncSaver {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AsyncSaver{
		store:   st,
		timeout: timeout,
		logger:  logger,
		kick:    make(chan struct{}, 1),
	}
}

// Start begins the background save loop.
func (s *AsyncSaver) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()
	return nil
}

// Enqueue queues a snapshot for saving, replacing any snapshot still
// waiting. Safe to call from the scheduler's notifier path.
func (s *AsyncSaver) Enqueue(prices map[string]float64) {
	s.mu.Lock()
	s.pending = prices
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Stop shuts the saver down, flushing any still-pending snapshot first.
func (s *AsyncSaver) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// The run loop may have exited with a snapshot still queued.
	s.save()
	return nil
}

func (s *AsyncSaver) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
			s.save()
		}
	}
}

func (s *AsyncSaver) save() {
	s.mu.Lock()
	prices := s.pending
	s.pending = nil
	s.mu.Unlock()
	if prices == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.Save(ctx, prices); err != nil {
		s.logger.Warn("snapshot save failed", "err", err)
	}
}
