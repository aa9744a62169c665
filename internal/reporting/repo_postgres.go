package reporting

import (
	"context"
	"database/sql"
	"time"

	"maternity-platform/internal/birth"
)

// PostgresRepo reads the birth and death tables directly; reporting keeps no
// tables of its own.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListBirths(ctx context.Context, from, to time.Time, shift string) ([]birth.Record, error) {
	query := `
		SELECT id, shift, delivered_at, delivery_type, newborn_status, weight_grams, apgar_5
		FROM birth_records
		WHERE delivered_at >= $1 AND delivered_at <= $2`
	args := []any{from, to}
	if shift != "" {
		query += ` AND shift = $3`
		args = append(args, shift)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []birth.Record
	for rows.Next() {
		var b birth.Record
		var s sql.NullString
		if err := rows.Scan(&b.ID, &s, &b.DeliveredAt, &b.DeliveryType, &b.NewbornStatus,
			&b.WeightGrams, &b.Apgar5); err != nil {
			return nil, err
		}
		b.Shift = s.String
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListDeaths(ctx context.Context, from, to time.Time) ([]birth.Death, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mother_id, birth_record_id, occurred_at, cause_code
		FROM deaths
		WHERE occurred_at >= $1 AND occurred_at <= $2`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []birth.Death
	for rows.Next() {
		var d birth.Death
		var mid, bid sql.NullString
		if err := rows.Scan(&d.ID, &mid, &bid, &d.OccurredAt, &d.CauseCode); err != nil {
			return nil, err
		}
		d.MotherID = mid.String
		d.BirthRecordID = bid.String
		out = append(out, d)
	}
	return out, rows.Err()
}
