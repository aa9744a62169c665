package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
// List returns events newest first.

type Repository interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, f Filter) ([]Event, error)
}

// Filter narrows the audit viewer's listing. Zero values mean "no filter".
type Filter struct {
	ActorUserID string
	Action      Action
	From        time.Time
	To          time.Time
	Limit       int
}

// Service records and lists audit events.
//
// The viewer is restricted to the system administrator role at the route
// layer; this service does not re-check permissions.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if !ValidAction(e.Action) {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// Record is the convenience form used by services after a state-changing
// action.
func (s *Service) Record(ctx context.Context, action Action, actorUserID, actorRole, targetTable, targetID, detail string) error {
	return s.Append(ctx, Event{
		Action:      action,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		TargetTable: targetTable,
		TargetID:    targetID,
		Detail:      detail,
	})
}

// RecordDenied records a denied attempt. Denials are part of the audit
// contract, not best-effort telemetry.
func (s *Service) RecordDenied(ctx context.Context, actorUserID, actorRole, ip, detail string) error {
	return s.Append(ctx, Event{
		Action:      ActionAccessDenied,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Detail:      detail,
	})
}

// List returns events newest first for the audit viewer.
func (s *Service) List(ctx context.Context, f Filter) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return s.repo.List(ctx, f)
}
