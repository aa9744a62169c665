package birth

import (
	"context"
	"database/sql"
	"errors"

	"maternity-platform/pkg/utils"
)

// PostgresRepo persists birth records, corrections and deaths.
//
// birth_corrections and deaths carry INSERT-only policies; the only UPDATE
// statement in this file targets birth_records and is reached solely through
// the service's edit-window and epicrisis paths.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const recordColumns = `id, mother_id, shift, delivered_at, gestational_age_weeks,
	delivery_type, anesthesia, newborn_status, newborn_sex, weight_grams,
	length_cm, apgar_1, apgar_5, observations, partogram_data, epicrisis_data,
	registered_by, registered_at`

func (r *PostgresRepo) InsertRecord(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO birth_records (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		rec.ID, rec.MotherID, nullStr(rec.Shift), rec.DeliveredAt, rec.GestationalAgeWeek,
		string(rec.DeliveryType), nullStr(rec.Anesthesia), string(rec.NewbornStatus),
		nullStr(rec.NewbornSex), rec.WeightGrams, rec.LengthCM, rec.Apgar1, rec.Apgar5,
		nullStr(rec.Observations), nullBytes(rec.PartogramData), nullBytes(rec.EpicrisisData),
		rec.RegisteredBy, rec.RegisteredAt,
	)
	return err
}

func (r *PostgresRepo) GetRecord(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM birth_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *PostgresRepo) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM birth_records ORDER BY registered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateRecord(ctx context.Context, rec Record) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE birth_records SET
			delivered_at = $2, gestational_age_weeks = $3, delivery_type = $4,
			anesthesia = $5, newborn_status = $6, newborn_sex = $7,
			weight_grams = $8, length_cm = $9, apgar_1 = $10, apgar_5 = $11,
			observations = $12, partogram_data = $13, epicrisis_data = $14
		WHERE id = $1`,
		rec.ID, rec.DeliveredAt, rec.GestationalAgeWeek, string(rec.DeliveryType),
		nullStr(rec.Anesthesia), string(rec.NewbornStatus), nullStr(rec.NewbornSex),
		rec.WeightGrams, rec.LengthCM, rec.Apgar1, rec.Apgar5,
		nullStr(rec.Observations), nullBytes(rec.PartogramData), nullBytes(rec.EpicrisisData),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) AppendCorrection(ctx context.Context, c Correction) error {
	// The record row is locked FOR SHARE so the correction cannot race a
	// concurrent delete; it is never written.
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		var exists string
		err := tx.QueryRowContext(ctx, `SELECT id FROM birth_records WHERE id = $1 FOR SHARE`, c.RecordID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO birth_corrections
				(id, record_id, field, original_value, new_value, justification, correcting_user, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			c.ID, c.RecordID, c.Field, c.OriginalValue, c.NewValue,
			c.Justification, c.CorrectingUser, c.CreatedAt,
		)
		return err
	})
}

func (r *PostgresRepo) ListCorrections(ctx context.Context, recordID string) ([]Correction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, record_id, field, original_value, new_value, justification, correcting_user, created_at
		FROM birth_corrections WHERE record_id = $1 ORDER BY created_at ASC`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var c Correction
		if err := rows.Scan(&c.ID, &c.RecordID, &c.Field, &c.OriginalValue, &c.NewValue,
			&c.Justification, &c.CorrectingUser, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) InsertDeath(ctx context.Context, d Death) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deaths (id, mother_id, birth_record_id, occurred_at, cause_code, registered_by, registered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, nullStr(d.MotherID), nullStr(d.BirthRecordID), d.OccurredAt,
		d.CauseCode, d.RegisteredBy, d.RegisteredAt,
	)
	return err
}

func (r *PostgresRepo) ListDeaths(ctx context.Context) ([]Death, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mother_id, birth_record_id, occurred_at, cause_code, registered_by, registered_at
		FROM deaths ORDER BY occurred_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Death
	for rows.Next() {
		var (
			d        Death
			mid, bid sql.NullString
		)
		if err := rows.Scan(&d.ID, &mid, &bid, &d.OccurredAt, &d.CauseCode, &d.RegisteredBy, &d.RegisteredAt); err != nil {
			return nil, err
		}
		d.MotherID = mid.String
		d.BirthRecordID = bid.String
		out = append(out, d)
	}
	return out, rows.Err()
}

/* ===================== scan helpers ===================== */

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec                             Record
		shift, anesthesia, sex, obs     sql.NullString
		partogram, epicrisis            []byte
	)
	err := row.Scan(&rec.ID, &rec.MotherID, &shift, &rec.DeliveredAt, &rec.GestationalAgeWeek,
		&rec.DeliveryType, &anesthesia, &rec.NewbornStatus, &sex, &rec.WeightGrams,
		&rec.LengthCM, &rec.Apgar1, &rec.Apgar5, &obs, &partogram, &epicrisis,
		&rec.RegisteredBy, &rec.RegisteredAt)
	if err != nil {
		return Record{}, err
	}
	rec.Shift = shift.String
	rec.Anesthesia = anesthesia.String
	rec.NewbornSex = sex.String
	rec.Observations = obs.String
	rec.PartogramData = partogram
	rec.EpicrisisData = epicrisis
	return rec, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
