package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/security"
)

type PatientService interface {
	Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error)
	Get(ctx context.Context, actorID, patientID uuid.UUID) (*model.Patient, error)
	GetByDocument(ctx context.Context, actorID uuid.UUID, documentNumber string) (*model.Patient, error)
	List(ctx context.Context, actorID uuid.UUID) ([]*model.Patient, error)
	ListByStatus(ctx context.Context, actorID uuid.UUID, status model.AffiliationStatus) ([]*model.Patient, error)
	Update(ctx context.Context, actorID, patientID uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	Deactivate(ctx context.Context, actorID, patientID uuid.UUID) error
}

type Service struct {
	patients repository.PatientRepository
	users    repository.UserRepository
	tx       repository.TxManager
	access   *access.Checker
	hasher   security.PasswordHasher
}

func NewService(patients repository.PatientRepository, users repository.UserRepository,
	tx repository.TxManager, checker *access.Checker, hasher security.PasswordHasher) *Service {

	return &Service{
		patients: patients,
		users:    users,
		tx:       tx,
		access:   checker,
		hasher:   hasher,
	}
}

// Register creates a patient together with its linked ROLE_PACIENTE login.
// Registration is open: no acting user is required.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	patient, err := model.NewPatient(req.DocumentNumber, req.FirstName, req.LastName,
		req.Email, req.Phone, model.AffiliationType(req.AffiliationType), req.AffiliationDate)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser(req.Username, req.Email, hashed, model.RolePaciente, &patient.ID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.patients.ExistsByDocument(ctx, patient.DocumentNumber)
		if err != nil {
			return fmt.Errorf("checking document uniqueness: %w", err)
		}
		if exists {
			return errors.Duplicate("patient", "document number", patient.DocumentNumber)
		}

		taken, err := s.users.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return fmt.Errorf("checking username uniqueness: %w", err)
		}
		if taken {
			return errors.Duplicate("user", "username", user.Username)
		}

		taken, err = s.users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("checking email uniqueness: %w", err)
		}
		if taken {
			return errors.Duplicate("user", "email", user.Email)
		}

		if err := s.patients.Create(ctx, patient); err != nil {
			return fmt.Errorf("creating patient: %w", err)
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("creating patient user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// Get returns a patient the actor may read. Existence is checked before
// permission so an unauthorized caller still learns whether the id exists;
// resource ids here are not secret.
func (s *Service) Get(ctx context.Context, actorID, patientID uuid.UUID) (*model.Patient, error) {
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
	return patient, nil
}

// GetByDocument is a staff-oriented lookup; patients may still resolve their
// own record through it.
func (s *Service) GetByDocument(ctx context.Context, actorID uuid.UUID, documentNumber string) (*model.Patient, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.GetByDocument(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanReadPatient(actor, patient.ID); err != nil {
		return nil, err
	}
	return patient, nil
}

// List returns all active patients for staff. A patient user sees only
// their own record.
func (s *Service) List(ctx context.Context, actorID uuid.UUID) ([]*model.Patient, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if actor.IsPatient() {
		if !actor.HasPatient() {
			return nil, errors.Unauthorized("user has no linked patient")
		}
		own, err := s.patients.Get(ctx, *actor.PatientID)
		if err != nil {
			return nil, err
		}
		return []*model.Patient{own}, nil
	}

	return s.patients.ListActive(ctx)
}

// ListByStatus filters patients by affiliation status. Staff only.
func (s *Service) ListByStatus(ctx context.Context, actorID uuid.UUID, status model.AffiliationStatus) ([]*model.Patient, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() {
		return nil, errors.Unauthorized("patients cannot filter the patient list")
	}

	switch status {
	case model.AffiliationStatusActive, model.AffiliationStatusInactive, model.AffiliationStatusSuspended:
	default:
		return nil, errors.Validation("invalid affiliation status: %s", status)
	}
	return s.patients.ListByStatus(ctx, status)
}

// Update replaces the patient's contact fields and keeps the linked login
// email in sync.
func (s *Service) Update(ctx context.Context, actorID, patientID uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var patient *model.Patient
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		patient, err = s.patients.Get(ctx, patientID)
		if err != nil {
			return err
		}
		if err := s.access.CanUpdatePatient(actor, patient.ID); err != nil {
			return err
		}

		previousEmail := patient.Email
		if err := patient.Update(req.FirstName, req.LastName, req.Email, req.Phone); err != nil {
			return err
		}

		if patient.Email != previousEmail {
			taken, err := s.users.ExistsByEmail(ctx, patient.Email)
			if err != nil {
				return fmt.Errorf("checking email uniqueness: %w", err)
			}
			if taken {
				return errors.Duplicate("user", "email", patient.Email)
			}
		}

		if err := s.patients.Update(ctx, patient); err != nil {
			return fmt.Errorf("updating patient: %w", err)
		}

		user, err := s.users.GetByPatient(ctx, patient.ID)
		if err != nil {
			// A staff-created patient may predate self-service logins.
			if errors.IsKind(err, errors.KindNotFound) {
				return nil
			}
			return fmt.Errorf("loading patient user: %w", err)
		}
		if user.Email == patient.Email {
			return nil
		}
		if err := user.UpdateEmail(patient.Email); err != nil {
			return err
		}
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("updating patient user: %w", err)
		}
		s.access.Invalidate(user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// Deactivate sets the affiliation to INACTIVE and disables the linked
// login. The record stays readable. Admin only.
func (s *Service) Deactivate(ctx context.Context, actorID, patientID uuid.UUID) error {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		patient, err := s.patients.Get(ctx, patientID)
		if err != nil {
			return err
		}
		if err := s.access.CanDeactivatePatient(actor); err != nil {
			return err
		}

		if err := patient.Deactivate(); err != nil {
			return err
		}
		if err := s.patients.Update(ctx, patient); err != nil {
			return fmt.Errorf("deactivating patient: %w", err)
		}

		user, err := s.users.GetByPatient(ctx, patient.ID)
		if err != nil {
			if errors.IsKind(err, errors.KindNotFound) {
				return nil
			}
			return fmt.Errorf("loading patient user: %w", err)
		}
		if !user.Active {
			return nil
		}
		if err := user.Deactivate(); err != nil {
			return err
		}
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("deactivating patient user: %w", err)
		}
		s.access.Invalidate(user.ID)
		return nil
	})
}
