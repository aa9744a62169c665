package patient

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo backs tests. Not for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	mothers map[string]Mother
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{mothers: make(map[string]Mother)}
}

func (r *MemoryRepo) Insert(ctx context.Context, m Mother) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.mothers {
		if existing.NationalID == m.NationalID {
			return ErrDuplicateNationalID
		}
	}
	r.mothers[m.ID] = m
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Mother, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mothers[id]
	if !ok {
		return Mother{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) GetByNationalID(ctx context.Context, nationalID string) (Mother, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mothers {
		if m.NationalID == nationalID {
			return m, nil
		}
	}
	return Mother{}, ErrNotFound
}

func (r *MemoryRepo) Update(ctx context.Context, m Mother) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mothers[m.ID]; !ok {
		return ErrNotFound
	}
	r.mothers[m.ID] = m
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Mother, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Mother, 0, len(r.mothers))
	for _, m := range r.mothers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdmittedAt.After(out[j].AdmittedAt) })
	return out, nil
}
