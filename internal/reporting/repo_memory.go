package reporting

import (
	"context"
	"time"

	"maternity-platform/internal/birth"
)

// MemoryRepo backs tests, seeded with fixed rows.
type MemoryRepo struct {
	Births []birth.Record
	Deaths []birth.Death
}

func (r *MemoryRepo) ListBirths(ctx context.Context, from, to time.Time, shift string) ([]birth.Record, error) {
	var out []birth.Record
	for _, b := range r.Births {
		if b.DeliveredAt.Before(from) || b.DeliveredAt.After(to) {
			continue
		}
		if shift != "" && b.Shift != shift {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *MemoryRepo) ListDeaths(ctx context.Context, from, to time.Time) ([]birth.Death, error) {
	var out []birth.Death
	for _, d := range r.Deaths {
		if d.OccurredAt.Before(from) || d.OccurredAt.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
