package patient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const motherColumns = `id, national_id, first_name, last_name, age, blood_type,
	allergies, phone, address, shift, admitted_at, created_by, created_at, updated_at`

func (r *PostgresRepo) Insert(ctx context.Context, m Mother) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mothers (`+motherColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		m.ID, m.NationalID, m.FirstName, m.LastName, m.Age, nullStr(m.BloodType),
		nullStr(m.Allergies), nullStr(m.Phone), nullStr(m.Address), nullStr(m.Shift),
		m.AdmittedAt, m.CreatedBy, m.CreatedAt, m.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateNationalID
	}
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Mother, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+motherColumns+` FROM mothers WHERE id = $1`, id)
	return scanMother(row)
}

func (r *PostgresRepo) GetByNationalID(ctx context.Context, nationalID string) (Mother, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+motherColumns+` FROM mothers WHERE national_id = $1`, nationalID)
	return scanMother(row)
}

func (r *PostgresRepo) Update(ctx context.Context, m Mother) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE mothers SET
			first_name = $2, last_name = $3, age = $4, blood_type = $5,
			allergies = $6, phone = $7, address = $8, shift = $9, updated_at = $10
		WHERE id = $1`,
		m.ID, m.FirstName, m.LastName, m.Age, nullStr(m.BloodType),
		nullStr(m.Allergies), nullStr(m.Phone), nullStr(m.Address), nullStr(m.Shift),
		m.UpdatedAt,
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

func (r *PostgresRepo) List(ctx context.Context) ([]Mother, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+motherColumns+` FROM mothers ORDER BY admitted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mother
	for rows.Next() {
		m, err := scanMother(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMother(row rowScanner) (Mother, error) {
	var m Mother
	var blood, allergies, phone, addr, shift sql.NullString
	err := row.Scan(&m.ID, &m.NationalID, &m.FirstName, &m.LastName, &m.Age, &blood,
		&allergies, &phone, &addr, &shift, &m.AdmittedAt, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Mother{}, ErrNotFound
	}
	if err != nil {
		return Mother{}, err
	}
	m.BloodType = blood.String
	m.Allergies = allergies.String
	m.Phone = phone.String
	m.Address = addr.String
	m.Shift = shift.String
	return m, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
