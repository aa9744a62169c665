package audit

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// PostgresRepo persists audit events. The audit_events table carries an
// INSERT-only policy; this type intentionally has no update or delete path.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, action, actor_user_id, actor_role, ip_address, target_table, target_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, string(e.Action), nullStr(e.ActorUserID), nullStr(e.ActorRole),
		nullStr(e.IPAddress), nullStr(e.TargetTable), nullStr(e.TargetID),
		nullStr(e.Detail), e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, cond+"$"+strconv.Itoa(len(args)))
	}
	if f.ActorUserID != "" {
		add("actor_user_id = ", f.ActorUserID)
	}
	if f.Action != "" {
		add("action = ", string(f.Action))
	}
	if !f.From.IsZero() {
		add("created_at >= ", f.From)
	}
	if !f.To.IsZero() {
		add("created_at <= ", f.To)
	}

	q := `SELECT id, action, actor_user_id, actor_role, ip_address, target_table, target_id, detail, created_at
		FROM audit_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e                                          Event
			actor, role, ip, ttable, tid, detail sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &actor, &role, &ip, &ttable, &tid, &detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActorUserID = actor.String
		e.ActorRole = role.String
		e.IPAddress = ip.String
		e.TargetTable = ttable.String
		e.TargetID = tid.String
		e.Detail = detail.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
