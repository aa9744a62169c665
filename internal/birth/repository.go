package birth

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("birth: not found")

	// ErrPolicyViolation marks a mutation attempted outside its permitted
	// state. The caller should have gated the action via CurrentState, so
	// hitting this is a contract fault to log, not a message to show users.
	ErrPolicyViolation = errors.New("birth: policy violation")

	// ErrDenied marks a read blocked by capability or shift scope.
	ErrDenied = errors.New("birth: access denied")
)

// Repository is the persistence contract for birth records, corrections and
// deaths.
//
// Corrections and deaths are append-only: no update or delete methods exist
// for them by design. UpdateRecord is the only in-place write and is used
// solely for edit-window edits and epicrisis payloads.
type Repository interface {
	InsertRecord(ctx context.Context, r Record) error
	GetRecord(ctx context.Context, id string) (Record, error)
	ListRecords(ctx context.Context) ([]Record, error)
	UpdateRecord(ctx context.Context, r Record) error

	AppendCorrection(ctx context.Context, c Correction) error
	ListCorrections(ctx context.Context, recordID string) ([]Correction, error)

	InsertDeath(ctx context.Context, d Death) error
	ListDeaths(ctx context.Context) ([]Death, error)
}
