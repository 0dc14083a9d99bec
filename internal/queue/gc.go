package queue

import (
	"context"
	"fmt"
	"time"
)

// GarbageCollector periodically purges dead-lettered playlist jobs that
// have aged past retention. Failed builds land in the DLQ for
// inspection; stale ones are not worth replaying because the listener's
// tastes have moved on.
type GarbageCollector struct {
	dlqPurger DLQPurger
	interval  time.Duration
	retention time.Duration
}

// NewGarbageCollector creates a collector. purger is typically the
// RabbitMQ queue, which implements DLQPurger.
func NewGarbageCollector(purger DLQPurger, interval time.Duration, retention time.Duration) *GarbageCollector {
	return &GarbageCollector{
		dlqPurger: purger,
		interval:  interval,
		retention: retention,
	}
}

// Start runs the GC loop until ctx is cancelled.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := gc.collect(ctx); err != nil {
				fmt.Printf("DLQ GC error: %v\n", err)
			}
		}
	}
}

func (gc *GarbageCollector) collect(ctx context.Context) error {
	if gc.dlqPurger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	n, err := gc.dlqPurger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return fmt.Errorf("DLQ purge: %w", err)
	}
	if n > 0 {
		fmt.Printf("DLQ GC purged %d message(s) older than %v\n", n, gc.retention)
	}
	return nil
}
