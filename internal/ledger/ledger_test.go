package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLedger(t *testing.T) (*Ledger, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := New(client, Config{
		Threshold: 5,
		Window:    5 * time.Minute,
		KeyPrefix: "login:fail:",
	})
	return l, mr
}

func TestLockAfterThresholdFailures(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		count, err := l.RecordFailure(ctx, "alice")
		if err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i, err)
		}
		if count != int64(i) {
			t.Fatalf("RecordFailure %d returned count %d", i, count)
		}

		locked, err := l.IsLocked(ctx, "alice")
		if err != nil {
			t.Fatalf("IsLocked failed: %v", err)
		}
		if i < 5 && locked {
			t.Fatalf("locked after only %d failures", i)
		}
		if i == 5 && !locked {
			t.Fatal("not locked after 5 failures")
		}
	}
}

func TestSuccessClearsCounterImmediately(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := l.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}
	if err := l.RecordSuccess(ctx, "alice"); err != nil {
		t.Fatalf("RecordSuccess failed: %v", err)
	}

	locked, err := l.IsLocked(ctx, "alice")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if locked {
		t.Error("expected identity to unlock immediately after success")
	}
	count, err := l.FailureCount(ctx, "alice")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d after success, want 0", count)
	}
}

func TestLockExpiresAfterQuietWindow(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := l.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	mr.FastForward(5*time.Minute + time.Second)

	locked, err := l.IsLocked(ctx, "alice")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if locked {
		t.Error("expected lock to expire after a quiet window")
	}
}

func TestEveryFailureRefreshesWindow(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := l.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	// Just short of expiry, one more failure restarts the clock and
	// crosses the threshold.
	mr.FastForward(4 * time.Minute)
	count, err := l.RecordFailure(ctx, "alice")
	if err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}

	// Another near-window wait: the refreshed TTL keeps the lock alive.
	mr.FastForward(4 * time.Minute)
	locked, err := l.IsLocked(ctx, "alice")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if !locked {
		t.Error("expected refreshed window to keep the identity locked")
	}
}

func TestUnknownIdentityReadsAsZero(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	count, err := l.FailureCount(ctx, "nobody")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d for unknown identity, want 0", count)
	}

	locked, err := l.IsLocked(ctx, "nobody")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if locked {
		t.Error("unknown identity must never read as locked")
	}
}

func TestConcurrentFailuresNeverLoseUpdates(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.RecordFailure(ctx, "alice"); err != nil {
				t.Errorf("RecordFailure failed: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := l.FailureCount(ctx, "alice")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != workers {
		t.Errorf("count = %d after %d concurrent failures, want %d", count, workers, workers)
	}
}

func TestBackendDownReturnsUnavailable(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()
	mr.Close()

	if _, err := l.RecordFailure(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("RecordFailure: expected ErrUnavailable, got %v", err)
	}
	if _, err := l.IsLocked(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("IsLocked: expected ErrUnavailable, got %v", err)
	}
	if err := l.RecordSuccess(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("RecordSuccess: expected ErrUnavailable, got %v", err)
	}
}
