package directory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestFetchAllStopsOnShortPage(t *testing.T) {
	pages := [][]int{
		{1, 2, 3},
		{4, 5},
	}
	calls := 0
	items, err := fetchAll(context.Background(), 3, func(ctx context.Context, offset, limit int) ([]int, error) {
		if offset != calls*3 {
			t.Fatalf("unexpected offset: got %d want %d", offset, calls*3)
		}
		page := pages[calls]
		calls++
		return page, nil
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if calls != 2 {
		t.Fatalf("unexpected call count: got %d want 2", calls)
	}
	if len(items) != 5 {
		t.Fatalf("unexpected item count: got %d want 5", len(items))
	}
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	calls := 0
	items, err := fetchAll(context.Background(), 2, func(ctx context.Context, offset, limit int) ([]int, error) {
		calls++
		if calls <= 2 {
			return []int{calls, calls}, nil
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if calls != 3 {
		t.Fatalf("unexpected call count: got %d want 3", calls)
	}
	if len(items) != 4 {
		t.Fatalf("unexpected item count: got %d want 4", len(items))
	}
}

func TestFetchAllReturnsPartialOnError(t *testing.T) {
	calls := 0
	items, err := fetchAll(context.Background(), 2, func(ctx context.Context, offset, limit int) ([]int, error) {
		calls++
		if calls == 3 {
			return nil, fmt.Errorf("boom")
		}
		return []int{1, 2}, nil
	})
	if err == nil {
		t.Fatalf("expected error from failed page")
	}
	if len(items) != 4 {
		t.Fatalf("expected partial result of 4 items, got %d", len(items))
	}
}

func TestPacerEnforcesInterval(t *testing.T) {
	pacer := NewPacer(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("pacer wait #%d: %v", i+1, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("expected at least 60ms for three paced requests, got %v", elapsed)
	}
}

func TestPacerRespectsContextCancellation(t *testing.T) {
	pacer := NewPacer(time.Minute)
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should be immediate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pacer.Wait(ctx); err == nil {
		t.Fatalf("expected context error from paced wait")
	}
}
