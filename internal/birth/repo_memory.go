package birth

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo backs tests. Not for production use.
type MemoryRepo struct {
	mu          sync.Mutex
	records     map[string]Record
	corrections []Correction
	deaths      []Death
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]Record)}
}

func (r *MemoryRepo) InsertRecord(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) GetRecord(ctx context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) ListRecords(ctx context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}

func (r *MemoryRepo) UpdateRecord(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return ErrNotFound
	}
	r.records[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) AppendCorrection(ctx context.Context, c Correction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[c.RecordID]; !ok {
		return ErrNotFound
	}
	r.corrections = append(r.corrections, c)
	return nil
}

func (r *MemoryRepo) ListCorrections(ctx context.Context, recordID string) ([]Correction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Correction
	for _, c := range r.corrections {
		if c.RecordID == recordID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) InsertDeath(ctx context.Context, d Death) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deaths = append(r.deaths, d)
	return nil
}

func (r *MemoryRepo) ListDeaths(ctx context.Context) ([]Death, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Death, len(r.deaths))
	copy(out, r.deaths)
	return out, nil
}
