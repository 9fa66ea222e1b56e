package calls

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the call log.
// Append-only: records are never updated or deleted.
type Repository interface {
	Record(ctx context.Context, c Call) error
	List(ctx context.Context, from, to time.Time) ([]Call, error)
}

var ErrInvalidCall = errors.New("calls: invalid record")

// Prepare fills in identity fields and validates the record before insert.
func Prepare(c Call, now time.Time) (Call, error) {
	if c.From == "" && c.To == "" {
		return Call{}, ErrInvalidCall
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = CallStatusCompleted
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now.UTC()
	}
	return c, nil
}

// MemoryRepo is the in-memory call log for tests and deployments without
// Postgres configured.
type MemoryRepo struct {
	mu    sync.Mutex
	calls []Call
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Record(ctx context.Context, c Call) error {
	c, err := Prepare(c, time.Now())
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, from, to time.Time) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0)
	for _, c := range r.calls {
		if c.CreatedAt.Before(from) || !c.CreatedAt.Before(to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
