package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CleanerConfig controls the concurrency characteristics of the cleaner.
type CleanerConfig struct {
	QueueSize int
	Workers   int
}

// Cleaner asynchronously removes media objects that entity deletion has
// orphaned. Deletion is best-effort: failures are logged and the object is
// abandoned rather than blocking or failing the originating request.
type Cleaner struct {
	store  Store
	logger *slog.Logger

	// mu guards closed and every send on jobs, so Shutdown can only close
	// the channel while no send is in flight.
	mu     sync.Mutex
	closed bool
	jobs   chan string
	wg     sync.WaitGroup
}

var errCleanerClosed = errors.New("media cleaner closed")

// NewCleaner constructs a background worker pool that deletes media objects.
func NewCleaner(store Store, cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cleaner{
		store:  store,
		logger: logger,
		jobs:   make(chan string, cfg.QueueSize),
	}

	c.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go c.worker()
	}

	return c
}

// Enqueue schedules deletion of the object behind the public URL. Empty
// URLs are ignored; enqueueing after Shutdown returns an error instead of
// blocking or panicking.
func (c *Cleaner) Enqueue(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errCleanerClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.jobs <- url:
		return nil
	}
}

// Shutdown stops accepting new work and waits for the workers to drain the
// jobs already queued.
func (c *Cleaner) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *Cleaner) worker() {
	defer c.wg.Done()

	for url := range c.jobs {
		c.deleteObject(url)
	}
}

func (c *Cleaner) deleteObject(url string) {
	if c.store == nil {
		c.logger.Error("media cleaner missing store")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.store.Delete(ctx, url); err != nil {
		c.logger.Error("media object deletion failed", "url", url, "error", err)
	}
}
