package reporting

import (
	"context"
	"errors"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/birth"
	"maternity-platform/internal/rbac"
)

var (
	ErrInvalidRequest = errors.New("reporting: invalid request")
	ErrDenied         = errors.New("reporting: access denied")
)

// Repository abstracts data access for reporting.
//
// Implementations should query the immutable sources directly (birth records,
// deaths); summaries are computed here, never stored.

type Repository interface {
	ListBirths(ctx context.Context, from, to time.Time, shift string) ([]birth.Record, error)
	ListDeaths(ctx context.Context, from, to time.Time) ([]birth.Death, error)
}

type Service struct {
	repo   Repository
	engine *rbac.Engine
	audit  *audit.Service
}

func NewService(repo Repository, engine *rbac.Engine, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, engine: engine, audit: auditSvc}
}

func (s *Service) BirthsSummary(ctx context.Context, sub rbac.Subject, req BirthsSummaryRequest) (BirthsSummary, error) {
	if d := s.engine.Authorize(sub, rbac.CapGenerateReports, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "births summary: "+d.Reason)
		return BirthsSummary{}, ErrDenied
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return BirthsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return BirthsSummary{}, errors.New("reporting: repository not configured")
	}

	shift := rbac.NormalizeShift(req.Shift)
	rows, err := s.repo.ListBirths(ctx, req.Range.From, req.Range.To, shift)
	if err != nil {
		return BirthsSummary{}, err
	}

	out := BirthsSummary{Shift: shift}
	var totalWeight, totalApgar5 int
	for _, r := range rows {
		out.TotalBirths++
		totalWeight += r.WeightGrams
		totalApgar5 += r.Apgar5
		if r.NewbornStatus == birth.NewbornStillbirth {
			out.Stillbirths++
		}
		switch r.DeliveryType {
		case birth.DeliveryEutocic:
			out.EutocicBirths++
		case birth.DeliveryElectiveCesarean:
			out.ElectiveCesareans++
		case birth.DeliveryEmergencyCesarean:
			out.EmergencyCesareans++
		case birth.DeliveryForceps:
			out.ForcepsBirths++
		case birth.DeliveryVacuum:
			out.VacuumBirths++
		}
		switch r.Shift {
		case rbac.ShiftDay:
			out.DayShiftBirths++
		case rbac.ShiftEvening:
			out.EveningShiftBirths++
		case rbac.ShiftNight:
			out.NightShiftBirths++
		}
	}
	if out.TotalBirths > 0 {
		out.AverageWeightGrams = totalWeight / out.TotalBirths
		out.AverageApgar5 = float64(totalApgar5) / float64(out.TotalBirths)
	}

	s.auditGenerated(ctx, sub, "births summary")
	return out, nil
}

func (s *Service) DeathsSummary(ctx context.Context, sub rbac.Subject, req DeathsSummaryRequest) (DeathsSummary, error) {
	if d := s.engine.Authorize(sub, rbac.CapGenerateReports, nil); !d.Allowed {
		s.auditDenied(ctx, sub, "deaths summary: "+d.Reason)
		return DeathsSummary{}, ErrDenied
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return DeathsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return DeathsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListDeaths(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return DeathsSummary{}, err
	}

	out := DeathsSummary{DeathsByCause: map[string]int{}}
	for _, d := range rows {
		out.TotalDeaths++
		// Exactly one of the two references is set per row.
		if d.MotherID != "" {
			out.MaternalDeaths++
		} else {
			out.NeonatalDeaths++
		}
		out.DeathsByCause[d.CauseCode]++
	}

	s.auditGenerated(ctx, sub, "deaths summary")
	return out, nil
}

func (s *Service) auditGenerated(ctx context.Context, sub rbac.Subject, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, audit.ActionReportGenerated, sub.Identity, sub.Role, "", "", detail)
}

func (s *Service) auditDenied(ctx context.Context, sub rbac.Subject, detail string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.RecordDenied(ctx, sub.Identity, sub.Role, "", detail)
}
