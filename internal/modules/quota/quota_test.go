// README: Quota module tests (monthly rollover and limit boundary logic).
package quota

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memCounter struct {
	counts map[string]int64
	err    error
}

func (m *memCounter) Incr(_ context.Context, uid, month string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[uid+"|"+month]++
	return m.counts[uid+"|"+month], nil
}

// TestUseTurnLimitBoundary verifies the last allowed turn succeeds and the next is blocked.
func TestUseTurnLimitBoundary(t *testing.T) {
	svc := NewService(&memCounter{}, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.UseTurn(ctx, "u1"); err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
	}
	if err := svc.UseTurn(ctx, "u1"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if err := svc.UseTurn(ctx, "u2"); err != nil {
		t.Fatalf("other user blocked: %v", err)
	}
}

// TestUseTurnMonthRollover verifies a new month starts a fresh counter.
func TestUseTurnMonthRollover(t *testing.T) {
	svc := NewService(&memCounter{}, 1)
	svc.now = func() time.Time { return time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if err := svc.UseTurn(ctx, "u1"); err != nil {
		t.Fatalf("january: %v", err)
	}
	if err := svc.UseTurn(ctx, "u1"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("second january turn: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	if err := svc.UseTurn(ctx, "u1"); err != nil {
		t.Fatalf("february: %v", err)
	}
}

func TestUseTurnDisabled(t *testing.T) {
	var nilSvc *Service
	if err := nilSvc.UseTurn(context.Background(), "u1"); err != nil {
		t.Fatalf("nil service: %v", err)
	}
	svc := NewService(&memCounter{err: errors.New("down")}, 0)
	if err := svc.UseTurn(context.Background(), "u1"); err != nil {
		t.Fatalf("limit 0 should not touch the counter: %v", err)
	}
}

func TestUseTurnCounterError(t *testing.T) {
	svc := NewService(&memCounter{err: errors.New("down")}, 5)
	if err := svc.UseTurn(context.Background(), "u1"); err == nil || errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected counter error, got %v", err)
	}
}

// TestRedisStoreIncr runs against a real Redis. It skips when TRIPMATE_TEST_REDIS_ADDR is not set.
func TestRedisStoreIncr(t *testing.T) {
	addr := os.Getenv("TRIPMATE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRIPMATE_TEST_REDIS_ADDR not set; skipping redis-backed tests")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	uid := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() { rdb.Del(ctx, "quota:"+uid+":2025-03") })

	store := NewRedisStore(rdb)
	for want := int64(1); want <= 2; want++ {
		got, err := store.Incr(ctx, uid, "2025-03")
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Fatalf("Incr = %d, want %d", got, want)
		}
	}
	ttl, err := rdb.TTL(ctx, "quota:"+uid+":2025-03").Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("expected a positive TTL, got %v (%v)", ttl, err)
	}
}
