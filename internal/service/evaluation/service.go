package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meditrack/authorization-api/internal/insurance"
	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/metrics"
)

type EvaluationService interface {
	Evaluate(ctx context.Context, actorID, authorizationID uuid.UUID, estimatedCost decimal.Decimal) (*model.CoverageEvaluation, error)
	GetByAuthorization(ctx context.Context, actorID, authorizationID uuid.UUID) (*model.CoverageEvaluation, error)
}

type Service struct {
	evaluations    repository.EvaluationRepository
	authorizations repository.AuthorizationRepository
	patients       repository.PatientRepository
	tx             repository.TxManager
	access         *access.Checker
	insurer        insurance.Validator
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

func NewService(evaluations repository.EvaluationRepository,
	authorizations repository.AuthorizationRepository, patients repository.PatientRepository,
	tx repository.TxManager, checker *access.Checker, insurer insurance.Validator,
	m *metrics.Metrics, log *logger.Logger) *Service {

	return &Service{
		evaluations:    evaluations,
		authorizations: authorizations,
		patients:       patients,
		tx:             tx,
		access:         checker,
		insurer:        insurer,
		metrics:        m,
		logger:         log,
	}
}

// Evaluate asks the external insurer for a coverage verdict and applies it.
// The evaluation record and the resulting status transition are persisted
// atomically: an approved verdict approves the authorization, anything else
// rejects it. At most one evaluation ever exists per authorization.
func (s *Service) Evaluate(ctx context.Context, actorID, authorizationID uuid.UUID, estimatedCost decimal.Decimal) (*model.CoverageEvaluation, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var evaluation *model.CoverageEvaluation
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		authorization, err := s.authorizations.Get(ctx, authorizationID)
		if err != nil {
			return err
		}
		if err := s.access.CanEvaluate(actor); err != nil {
			return err
		}

		evaluated, err := s.evaluations.ExistsByAuthorization(ctx, authorization.ID)
		if err != nil {
			return fmt.Errorf("checking prior evaluation: %w", err)
		}
		if evaluated {
			return errors.Conflict("authorization already evaluated: %s", authorization.ID)
		}

		if !estimatedCost.IsPositive() {
			return errors.Validation("estimated cost must be greater than zero")
		}

		patient, err := s.patients.Get(ctx, authorization.PatientID)
		if err != nil {
			return err
		}

		verdict, err := s.insurer.ValidateCoverage(ctx, patient.DocumentNumber,
			patient.AffiliationType, authorization.ServiceType, estimatedCost)
		if err != nil {
			return err
		}

		evaluation, err = model.NewCoverageEvaluation(authorization.ID,
			verdict.CoveragePercentage, verdict.CopayAmount, verdict.Approved,
			formatInsuranceResponse(verdict))
		if err != nil {
			return err
		}
		if err := s.evaluations.Create(ctx, evaluation); err != nil {
			return fmt.Errorf("saving evaluation: %w", err)
		}

		if verdict.Approved {
			err = authorization.Approve()
		} else {
			err = authorization.Reject()
		}
		if err != nil {
			return err
		}
		if err := s.authorizations.Update(ctx, authorization); err != nil {
			return fmt.Errorf("updating authorization verdict: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	verdictLabel := "rejected"
	if evaluation.Approved {
		verdictLabel = "approved"
	}
	s.metrics.EvaluationsTotal.WithLabelValues(verdictLabel).Inc()
	s.logger.Info("coverage evaluation completed",
		"evaluation_id", evaluation.ID.String(),
		"authorization_id", authorizationID.String(),
		"approved", evaluation.Approved,
		"coverage", evaluation.CoveragePercentage)
	return evaluation, nil
}

// GetByAuthorization returns the evaluation of one authorization, if any.
func (s *Service) GetByAuthorization(ctx context.Context, actorID, authorizationID uuid.UUID) (*model.CoverageEvaluation, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	authorization, err := s.authorizations.Get(ctx, authorizationID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanReadAuthorization(actor, authorization); err != nil {
		return nil, err
	}
	return s.evaluations.GetByAuthorization(ctx, authorization.ID)
}

// formatInsuranceResponse renders the upstream verdict for the audit column.
// The field order and the single-quote normalization of the message are kept
// stable so stored rows stay comparable across versions.
func formatInsuranceResponse(v *insurance.ValidationResult) string {
	code := v.AuthorizationCode
	if code == "" {
		code = "N/A"
	}
	message := strings.ReplaceAll(v.Message, `"`, "'")
	return fmt.Sprintf(
		`{"approved":%t,"coveragePercentage":%d,"coveredAmount":%s,"copayAmount":%s,"authorizationCode":"%s","message":"%s"}`,
		v.Approved, v.CoveragePercentage, v.CoveredAmount, v.CopayAmount, code, message)
}
