package quota

import (
	"context"
	"time"
)

// Service enforces the monthly chat-turn allowance.
type Service struct {
	counter Counter
	limit   int
	now     func() time.Time
}

// NewService creates a Service. A limit of zero or less disables enforcement.
func NewService(counter Counter, limit int) *Service {
	return &Service{counter: counter, limit: limit, now: time.Now}
}

// UseTurn consumes one turn for uid.
// Returns ErrQuotaExceeded once the month's allowance is spent.
func (s *Service) UseTurn(ctx context.Context, uid string) error {
	if s == nil || s.counter == nil || s.limit <= 0 {
		return nil
	}
	n, err := s.counter.Incr(ctx, uid, s.now().UTC().Format(monthLayout))
	if err != nil {
		return err
	}
	if n > int64(s.limit) {
		return ErrQuotaExceeded
	}
	return nil
}
