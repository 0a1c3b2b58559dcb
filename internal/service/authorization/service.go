package authorization

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/metrics"
)

type AuthorizationService interface {
	Create(ctx context.Context, actorID uuid.UUID, req *model.CreateAuthorizationRequest) (*model.MedicalAuthorization, error)
	Get(ctx context.Context, actorID, authorizationID uuid.UUID) (*model.MedicalAuthorization, error)
	ListByPatient(ctx context.Context, actorID, patientID uuid.UUID) ([]*model.MedicalAuthorization, error)
	ListPending(ctx context.Context, actorID uuid.UUID) ([]*model.MedicalAuthorization, error)
	UpdateStatus(ctx context.Context, actorID, authorizationID uuid.UUID, status model.AuthorizationStatus) (*model.MedicalAuthorization, error)
	UpdateDescription(ctx context.Context, actorID, authorizationID uuid.UUID, description string) (*model.MedicalAuthorization, error)
	Delete(ctx context.Context, actorID, authorizationID uuid.UUID) error
}

type Service struct {
	authorizations repository.AuthorizationRepository
	patients       repository.PatientRepository
	tx             repository.TxManager
	access         *access.Checker
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

func NewService(authorizations repository.AuthorizationRepository, patients repository.PatientRepository,
	tx repository.TxManager, checker *access.Checker, m *metrics.Metrics, log *logger.Logger) *Service {

	return &Service{
		authorizations: authorizations,
		patients:       patients,
		tx:             tx,
		access:         checker,
		metrics:        m,
		logger:         log,
	}
}

// Create registers a pending authorization for an active patient.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateAuthorizationRequest) (*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, errors.Validation("invalid patient id: %s", req.PatientID)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanCreateAuthorization(actor, patient.ID); err != nil {
		return nil, err
	}
	if !patient.CanRequestAuthorization() {
		return nil, errors.BusinessRule("patient %s is not active and cannot request authorizations", patient.DocumentNumber)
	}

	authorization, err := model.NewMedicalAuthorization(patient.ID,
		model.ServiceType(req.ServiceType), req.Description, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizations.Create(ctx, authorization); err != nil {
		return nil, fmt.Errorf("creating authorization: %w", err)
	}

	s.metrics.AuthorizationsByType.WithLabelValues(string(authorization.ServiceType)).Inc()
	s.logger.Info("authorization created",
		"authorization_id", authorization.ID.String(),
		"patient_id", patient.ID.String(),
		"service_type", string(authorization.ServiceType))
	return authorization, nil
}

// Get loads one authorization. Existence is reported before permission.
func (s *Service) Get(ctx context.Context, actorID, authorizationID uuid.UUID) (*model.MedicalAuthorization, error) {
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
	return authorization, nil
}

// ListByPatient returns the patient's authorizations. The patient must
// exist; a missing patient is reported before any permission failure.
func (s *Service) ListByPatient(ctx context.Context, actorID, patientID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanReadPatient(actor, patient.ID); err != nil {
		return nil, err
	}
	return s.authorizations.ListByPatient(ctx, patient.ID)
}

// ListPending returns the review queue. Staff only.
func (s *Service) ListPending(ctx context.Context, actorID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanListPending(actor); err != nil {
		return nil, err
	}
	return s.authorizations.ListByStatus(ctx, model.StatusPendiente)
}

// UpdateStatus forces a manual state transition. Admin only; the state
// machine itself still rejects illegal moves.
func (s *Service) UpdateStatus(ctx context.Context, actorID, authorizationID uuid.UUID, status model.AuthorizationStatus) (*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var authorization *model.MedicalAuthorization
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		authorization, err = s.authorizations.Get(ctx, authorizationID)
		if err != nil {
			return err
		}
		if err := s.access.CanUpdateStatus(actor); err != nil {
			return err
		}

		switch status {
		case model.StatusAprobada:
			err = authorization.Approve()
		case model.StatusRechazada:
			err = authorization.Reject()
		case model.StatusEnRevision:
			err = authorization.MarkUnderReview()
		default:
			err = errors.Validation("invalid target status: %s", status)
		}
		if err != nil {
			return err
		}

		if err := s.authorizations.Update(ctx, authorization); err != nil {
			return fmt.Errorf("updating authorization status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("authorization status updated",
		"authorization_id", authorization.ID.String(),
		"status", string(authorization.Status))
	return authorization, nil
}

// UpdateDescription edits a pending authorization's description. Staff
// only.
func (s *Service) UpdateDescription(ctx context.Context, actorID, authorizationID uuid.UUID, description string) (*model.MedicalAuthorization, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var authorization *model.MedicalAuthorization
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		authorization, err = s.authorizations.Get(ctx, authorizationID)
		if err != nil {
			return err
		}
		if err := s.access.CanModifyAuthorization(actor); err != nil {
			return err
		}
		if err := authorization.UpdateDescription(description); err != nil {
			return err
		}
		if err := s.authorizations.Update(ctx, authorization); err != nil {
			return fmt.Errorf("updating authorization: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return authorization, nil
}

// Delete tombstones an authorization. Allowed only from PENDIENTE or
// RECHAZADA; the status itself is kept.
func (s *Service) Delete(ctx context.Context, actorID, authorizationID uuid.UUID) error {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		authorization, err := s.authorizations.Get(ctx, authorizationID)
		if err != nil {
			return err
		}
		if err := s.access.CanModifyAuthorization(actor); err != nil {
			return err
		}
		if err := authorization.Delete(); err != nil {
			return err
		}
		if err := s.authorizations.Update(ctx, authorization); err != nil {
			return fmt.Errorf("deleting authorization: %w", err)
		}
		return nil
	})
}
