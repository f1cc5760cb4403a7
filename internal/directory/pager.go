package directory

import (
	"context"
	"sync"
	"time"
)

// DefaultRequestInterval is the minimum delay between two directory
// requests, tuned to stay under the upstream per-second quota.
const DefaultRequestInterval = 330 * time.Millisecond

const defaultPageSize = 1000

// Pacer enforces a minimum interval between directory requests. One pacer
// instance is shared by every client operation, so the aggregate request
// cadence holds no matter how many operators are active at once. The lock is
// held across the sleep: concurrent callers queue up behind it.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultRequestInterval
	}
	return &Pacer{interval: interval}
}

func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if wait := p.interval - time.Since(p.last); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	p.last = time.Now()
	return nil
}

// fetchAll walks a paginated endpoint from offset zero, accumulating items
// until an empty page, a short page (end of data) or a failed fetch. A failed
// fetch returns the items accumulated so far together with the error; callers
// degrade to the partial result instead of failing the whole operation.
func fetchAll[T any](ctx context.Context, pageSize int, fetch func(ctx context.Context, offset, limit int) ([]T, error)) ([]T, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	items := make([]T, 0, pageSize)
	offset := 0
	for {
		page, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return items, err
		}
		if len(page) == 0 {
			return items, nil
		}
		items = append(items, page...)
		// A short page means the directory has no more data.
		if len(page) < pageSize {
			return items, nil
		}
		offset += pageSize
	}
}
