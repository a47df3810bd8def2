package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_OrderAndErrorIsolation(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	errOdd := errors.New("odd")

	results := Run(context.Background(), items, Options{Size: 3}, func(ctx context.Context, n int) (int, error) {
		if n%2 == 1 {
			return 0, errOdd
		}
		return n * 10, nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if items[i]%2 == 1 {
			if !errors.Is(r.Err, errOdd) {
				t.Errorf("item %d: err = %v, want errOdd", items[i], r.Err)
			}
			continue
		}
		if r.Err != nil || r.Value != items[i]*10 {
			t.Errorf("item %d: got (%d, %v)", items[i], r.Value, r.Err)
		}
	}
}

func TestRun_BoundsConcurrencyPerBatch(t *testing.T) {
	const size = 3
	var inFlight, peak int32
	var mu sync.Mutex
	finished := map[int]int{} // batch window -> finished items

	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	Run(context.Background(), items, Options{Size: size}, func(ctx context.Context, n int) (struct{}, error) {
		window := n / size
		mu.Lock()
		if window > 0 && finished[window-1] != size {
			t.Errorf("item %d started before batch %d was joined (%d finished)", n, window-1, finished[window-1])
		}
		mu.Unlock()

		now := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)

		mu.Lock()
		finished[window]++
		mu.Unlock()
		return struct{}{}, nil
	})

	if peak > size {
		t.Errorf("peak concurrency = %d, want <= %d", peak, size)
	}
}

func TestRun_CancelledContextSkipsRemainingBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32

	results := Run(ctx, []int{1, 2, 3, 4}, Options{Size: 2}, func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return n, nil
	})

	if calls != 2 {
		t.Errorf("calls = %d, want 2 (first batch only)", calls)
	}
	for _, r := range results[2:] {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("item %d: err = %v, want context.Canceled", r.Index, r.Err)
		}
	}
}

func TestRun_SizeBelowOne(t *testing.T) {
	results := Run(context.Background(), []string{"a", "b"}, Options{}, func(ctx context.Context, s string) (string, error) {
		return s + s, nil
	})
	if results[0].Value != "aa" || results[1].Value != "bb" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestRun_Empty(t *testing.T) {
	results := Run(context.Background(), nil, Options{Size: 2}, func(ctx context.Context, s string) (string, error) {
		t.Fatal("fn should not be called")
		return "", nil
	})
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
