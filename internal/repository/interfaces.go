package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/internal/model"
)

// TxManager provides the per-use-case transaction boundary. Repositories
// participating in fn observe read-then-write atomicity.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		ListActive(ctx context.Context) ([]*model.Patient, error)
		ListByStatus(ctx context.Context, status model.AffiliationStatus) ([]*model.Patient, error)
		ExistsByDocument(ctx context.Context, documentNumber string) (bool, error)
		CountByAffiliationType(ctx context.Context, affiliationType model.AffiliationType) (int64, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		ExistsByUsername(ctx context.Context, username string) (bool, error)
		ExistsByEmail(ctx context.Context, email string) (bool, error)
	}

	AuthorizationRepository interface {
		Create(ctx context.Context, authorization *model.MedicalAuthorization) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalAuthorization, error)
		Update(ctx context.Context, authorization *model.MedicalAuthorization) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalAuthorization, error)
		ListByStatus(ctx context.Context, status model.AuthorizationStatus) ([]*model.MedicalAuthorization, error)
		ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.MedicalAuthorization, error)
		ListByRequester(ctx context.Context, userID uuid.UUID) ([]*model.MedicalAuthorization, error)
		CountByStatus(ctx context.Context, status model.AuthorizationStatus) (int64, error)
	}

	EvaluationRepository interface {
		Create(ctx context.Context, evaluation *model.CoverageEvaluation) error
		Get(ctx context.Context, id uuid.UUID) (*model.CoverageEvaluation, error)
		GetByAuthorization(ctx context.Context, authorizationID uuid.UUID) (*model.CoverageEvaluation, error)
		ExistsByAuthorization(ctx context.Context, authorizationID uuid.UUID) (bool, error)
		ListByApproved(ctx context.Context, approved bool) ([]*model.CoverageEvaluation, error)
		AverageCoverage(ctx context.Context) (float64, error)
	}
)
