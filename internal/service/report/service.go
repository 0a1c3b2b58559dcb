package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/errors"
)

// Summary aggregates operational counters for the staff dashboard.
type Summary struct {
	AuthorizationsByStatus map[model.AuthorizationStatus]int64 `json:"authorizations_by_status"`
	PatientsByAffiliation  map[model.AffiliationType]int64     `json:"patients_by_affiliation"`
	EvaluationsApproved    int                                 `json:"evaluations_approved"`
	EvaluationsRejected    int                                 `json:"evaluations_rejected"`
	AverageCoverage        float64                             `json:"average_coverage"`
}

type ReportService interface {
	Summary(ctx context.Context, actorID uuid.UUID) (*Summary, error)
	AuthorizationsInRange(ctx context.Context, actorID uuid.UUID, from, to time.Time) ([]*model.MedicalAuthorization, error)
	AuthorizationsByRequester(ctx context.Context, actorID, requesterID uuid.UUID) ([]*model.MedicalAuthorization, error)
}

type Service struct {
	patients       repository.PatientRepository
	authorizations repository.AuthorizationRepository
	evaluations    repository.EvaluationRepository
	access         *access.Checker
}

func NewService(patients repository.PatientRepository,
	authorizations repository.AuthorizationRepository,
	evaluations repository.EvaluationRepository, checker *access.Checker) *Service {

	return &Service{
		patients:       patients,
		authorizations: authorizations,
		evaluations:    evaluations,
		access:         checker,
	}
}

// Summary is staff-only.
func (s *Service) Summary(ctx context.Context, actorID uuid.UUID) (*Summary, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanListPending(actor); err != nil {
		return nil, err
	}

	summary := &Summary{
		AuthorizationsByStatus: make(map[model.AuthorizationStatus]int64),
		PatientsByAffiliation:  make(map[model.AffiliationType]int64),
	}

	statuses := []model.AuthorizationStatus{
		model.StatusPendiente, model.StatusEnRevision, model.StatusAprobada, model.StatusRechazada,
	}
	for _, status := range statuses {
		n, err := s.authorizations.CountByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("counting authorizations %s: %w", status, err)
		}
		summary.AuthorizationsByStatus[status] = n
	}

	types := []model.AffiliationType{
		model.AffiliationContributivo, model.AffiliationSubsidiado, model.AffiliationEspecial,
	}
	for _, affiliationType := range types {
		n, err := s.patients.CountByAffiliationType(ctx, affiliationType)
		if err != nil {
			return nil, fmt.Errorf("counting patients %s: %w", affiliationType, err)
		}
		summary.PatientsByAffiliation[affiliationType] = n
	}

	approved, err := s.evaluations.ListByApproved(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing approved evaluations: %w", err)
	}
	rejected, err := s.evaluations.ListByApproved(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing rejected evaluations: %w", err)
	}
	summary.EvaluationsApproved = len(approved)
	summary.EvaluationsRejected = len(rejected)

	avg, err := s.evaluations.AverageCoverage(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing average coverage: %w", err)
	}
	summary.AverageCoverage = avg

	return summary, nil
}

// AuthorizationsInRange lists authorizations requested inside [from, to].
// Staff only.
func (s *Service) AuthorizationsInRange(ctx context.Context, actorID uuid.UUID, from, to time.Time) ([]*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanListPending(actor); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, errors.Validation("range end precedes start")
	}
	return s.authorizations.ListByDateRange(ctx, from, to)
}

// AuthorizationsByRequester lists the requests a given user filed. A
// non-admin caller may only ask for their own.
func (s *Service) AuthorizationsByRequester(ctx context.Context, actorID, requesterID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != requesterID {
		return nil, errors.Unauthorized("no permission to list another user's requests")
	}
	return s.authorizations.ListByRequester(ctx, requesterID)
}
