package activity

import (
	"context"
	"sync"
	"time"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	"it-asset-dashboard/internal/logger"

	"go.uber.org/zap"
)

const defaultSinkTimeout = 5 * time.Second

// AsyncRecorder fans each entry out to its sinks on a background goroutine.
// Sink failures are logged and never reach the caller.
type AsyncRecorder struct {
	sinks   []domainActivity.Sink
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncRecorder(timeout time.Duration, sinks ...domainActivity.Sink) *AsyncRecorder {
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	return &AsyncRecorder{sinks: sinks, timeout: timeout}
}

func (r *AsyncRecorder) Record(ctx context.Context, entry domainActivity.Entry) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		logger.Warn("Activity recorder closed, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("table", entry.TableName),
			zap.Uint("record_id", entry.RecordID),
		)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	// The request context is usually cancelled before the sinks finish.
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		e := entry
		for _, sink := range r.sinks {
			if err := sink.Write(ctx, &e); err != nil {
				logger.Warn("Failed to record activity",
					zap.String("action", string(e.Action)),
					zap.String("table", e.TableName),
					zap.Uint("record_id", e.RecordID),
					zap.Error(err),
					zap.String("event", "activity_record_failed"),
				)
			}
		}
	}()
}

// Close stops accepting entries and waits for in-flight ones, or for ctx.
func (r *AsyncRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
