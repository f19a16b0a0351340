package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/purnamedha/sirascan/internal/scan"
)

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	s := New()
	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected not found")
	}
}

func TestPutGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	r := &scan.Result{ID: "01A", Status: scan.StatusPending, Days: 7}
	if err := s.Put(context.Background(), r); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// mutating the original must not affect the stored copy
	r.Status = scan.StatusFailed

	got, ok, err := s.Get(context.Background(), "01A")
	if err != nil || !ok {
		t.Fatalf("Get = ok:%v err:%v", ok, err)
	}
	if got.Status != scan.StatusPending {
		t.Errorf("status = %s, want pending (store must copy)", got.Status)
	}

	// mutating the returned copy must not affect the store
	got.Days = 99
	again, _, _ := s.Get(context.Background(), "01A")
	if again.Days != 7 {
		t.Errorf("days = %d, want 7", again.Days)
	}
}

func TestLatest_OnlyCompleted(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if _, ok, _ := s.Latest(ctx); ok {
		t.Fatal("Latest on empty store should report not found")
	}

	_ = s.Put(ctx, &scan.Result{ID: "01B", Status: scan.StatusInProgress})
	if _, ok, _ := s.Latest(ctx); ok {
		t.Fatal("in-progress scans must not become latest")
	}

	_ = s.Put(ctx, &scan.Result{ID: "01B", Status: scan.StatusComplete})
	got, ok, _ := s.Latest(ctx)
	if !ok || got.ID != "01B" {
		t.Fatalf("latest = %+v ok:%v, want 01B", got, ok)
	}
}

func TestLatest_NewerWins(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	// ULIDs are lexicographically ordered by creation time.
	_ = s.Put(ctx, &scan.Result{ID: "01OLD", Status: scan.StatusComplete})
	_ = s.Put(ctx, &scan.Result{ID: "02NEW", Status: scan.StatusComplete})
	// a stale writer completing late must not displace the newer scan
	_ = s.Put(ctx, &scan.Result{ID: "01OLD", Status: scan.StatusComplete})

	got, ok, _ := s.Latest(ctx)
	if !ok || got.ID != "02NEW" {
		t.Fatalf("latest = %+v, want 02NEW", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('A' + n))
			_ = s.Put(ctx, &scan.Result{ID: id, Status: scan.StatusComplete})
			_, _, _ = s.Get(ctx, id)
			_, _, _ = s.Latest(ctx)
		}(i)
	}
	wg.Wait()
}
