package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/rbac"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDenied means the subject lacks the manage_users capability.
	ErrDenied = errors.New("users: access denied")

	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike; login never discloses which one failed.
	ErrInvalidCredentials = errors.New("users: invalid credentials")

	// ErrInactive rejects logins on deactivated accounts.
	ErrInactive = errors.New("users: account deactivated")
)

const MinPasswordLen = 8

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("users: %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

const usersTable = "users"

// Service owns staff account administration and credential checks.
type Service struct {
	repo   Repository
	engine *rbac.Engine
	audit  *audit.Service
	clock  func() time.Time
	cost   int
}

func NewService(repo Repository, engine *rbac.Engine, auditSvc *audit.Service) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		audit:  auditSvc,
		clock:  time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

// CreateInput carries the account form filled by the system administrator.
type CreateInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Shift    string `json:"shift,omitempty"`
}

// Create registers a staff account. Shift-scoped roles must carry a default
// shift; all others must not.
func (s *Service) Create(ctx context.Context, sub rbac.Subject, in CreateInput) (User, error) {
	if d := s.engine.Authorize(sub, rbac.CapManageUsers, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "create user: "+d.Reason)
		return User{}, ErrDenied
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return User{}, invalid("username", "required")
	}
	if len(in.Password) < MinPasswordLen {
		return User{}, invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	role := rbac.NormalizeRole(in.Role)
	if _, ok := rbac.DefaultCatalog()[role]; !ok {
		return User{}, invalid("role", "unknown role")
	}
	shift := rbac.NormalizeShift(in.Shift)
	if rbac.IsShiftScopedRole(role) && shift == "" {
		return User{}, invalid("shift", "required for shift-scoped roles")
	}
	if !rbac.IsShiftScopedRole(role) {
		shift = ""
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		Shift:        shift,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return User{}, err
	}
	s.auditAction(ctx, sub, audit.ActionUserCreated, u.ID, "role "+role)
	return u, nil
}

// UpdateInput carries a partial account update. Nil fields are unchanged.
type UpdateInput struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Shift    *string `json:"shift,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (s *Service) Update(ctx context.Context, sub rbac.Subject, id string, in UpdateInput) (User, error) {
	if d := s.engine.Authorize(sub, rbac.CapManageUsers, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "update user "+id+": "+d.Reason)
		return User{}, ErrDenied
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		role := rbac.NormalizeRole(*in.Role)
		if _, ok := rbac.DefaultCatalog()[role]; !ok {
			return User{}, invalid("role", "unknown role")
		}
		u.Role = role
	}
	if in.Shift != nil {
		u.Shift = rbac.NormalizeShift(*in.Shift)
	}
	if rbac.IsShiftScopedRole(u.Role) {
		if u.Shift == "" {
			return User{}, invalid("shift", "required for shift-scoped roles")
		}
	} else {
		u.Shift = ""
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLen {
			return User{}, invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLen))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}

	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	s.auditAction(ctx, sub, audit.ActionUserUpdated, u.ID, "")
	return u, nil
}

// Deactivate disables an account. The row stays so audit history keeps its
// actor; there is no delete.
func (s *Service) Deactivate(ctx context.Context, sub rbac.Subject, id string) error {
	if d := s.engine.Authorize(sub, rbac.CapManageUsers, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "deactivate user "+id+": "+d.Reason)
		return ErrDenied
	}
	if sub.Identity == id {
		return invalid("id", "cannot deactivate own account")
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !u.Active {
		return nil
	}
	u.Active = false
	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	s.auditAction(ctx, sub, audit.ActionUserDeactivated, u.ID, "")
	return nil
}

func (s *Service) Get(ctx context.Context, sub rbac.Subject, id string) (User, error) {
	if !s.engine.Capable(sub, rbac.CapManageUsers) {
		s.auditDenied(ctx, sub, "view user "+id+": "+rbac.ReasonCapabilityMissing)
		return User{}, ErrDenied
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, sub rbac.Subject) ([]User, error) {
	if !s.engine.Capable(sub, rbac.CapManageUsers) {
		s.auditDenied(ctx, sub, "list users: "+rbac.ReasonCapabilityMissing)
		return nil, ErrDenied
	}
	return s.repo.List(ctx)
}

// ResolveAccount returns the active account backing an existing session.
// Token refresh uses it; the caller authenticates by possession of the
// refresh token, not by capability.
func (s *Service) ResolveAccount(ctx context.Context, id string) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !u.Active {
		return User{}, ErrInactive
	}
	return u, nil
}

// Authenticate resolves a username/password pair to an active account. It
// runs before a session exists, so there is no subject to authorize.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, ErrNotFound) {
		// Burn a comparison anyway so the timing of unknown usernames
		// matches that of wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return User{}, ErrInactive
	}
	return u, nil
}

func (s *Service) auditAction(ctx context.Context, sub rbac.Subject, action audit.Action, targetID, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, action, sub.Identity, sub.Role, usersTable, targetID, detail)
}

func (s *Service) auditDenied(ctx context.Context, sub rbac.Subject, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.RecordDenied(ctx, sub.Identity, sub.Role, "", detail)
}
