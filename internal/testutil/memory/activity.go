package memory

import (
	"context"
	"sort"
	"sync"

	"it-asset-dashboard/internal/domain/activity"
)

// ActivityRepository implements activity.Repository. It is also a
// synchronous activity.Recorder so tests can assert on entries without
// waiting for a background writer.
type ActivityRepository struct {
	mu      sync.Mutex
	nextID  uint
	entries []activity.Entry
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) Record(ctx context.Context, e activity.Entry) {
	_ = r.Write(ctx, &e)
}

func (r *ActivityRepository) Write(_ context.Context, e *activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *e
	stored.ID = r.nextID
	r.entries = append(r.entries, stored)
	return nil
}

// List returns entries newest first.
func (r *ActivityRepository) List(_ context.Context, page, pageSize int) ([]*activity.Entry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]activity.Entry, len(r.entries))
	copy(sorted, r.entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	total := int64(len(sorted))
	start := (page - 1) * pageSize
	if start < 0 || start >= len(sorted) {
		return []*activity.Entry{}, total, nil
	}
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	out := make([]*activity.Entry, 0, end-start)
	for i := start; i < end; i++ {
		e := sorted[i]
		out = append(out, &e)
	}
	return out, total, nil
}

// Entries returns a copy of everything recorded, oldest first.
func (r *ActivityRepository) Entries() []activity.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]activity.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
