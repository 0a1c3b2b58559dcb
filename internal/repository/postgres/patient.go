package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	apperrors "github.com/meditrack/authorization-api/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, document_number, first_name, last_name, email, phone,
			affiliation_status, affiliation_type, affiliation_date, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		patient.ID,
		patient.DocumentNumber,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.AffiliationStatus,
		patient.AffiliationType,
		patient.AffiliationDate,
		patient.Deleted,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// Get returns a patient that has not been tombstoned.
func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1 AND deleted = FALSE`
	var patient model.Patient
	err := q(ctx, r.db).GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByDocument(ctx context.Context, documentNumber string) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE document_number = $1 AND deleted = FALSE`
	var patient model.Patient
	err := q(ctx, r.db).GetContext(ctx, &patient, query, documentNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", documentNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by document: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			affiliation_status = $5, deleted = $6, updated_at = $7
		WHERE id = $8
	`
	patient.UpdatedAt = time.Now()
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.AffiliationStatus,
		patient.Deleted,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) ListActive(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE affiliation_status = $1 AND deleted = FALSE
		ORDER BY last_name, first_name
	`
	var patients []*model.Patient
	if err := q(ctx, r.db).SelectContext(ctx, &patients, query, model.AffiliationStatusActive); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListByStatus(ctx context.Context, status model.AffiliationStatus) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE affiliation_status = $1 AND deleted = FALSE`
	var patients []*model.Patient
	if err := q(ctx, r.db).SelectContext(ctx, &patients, query, status); err != nil {
		return nil, fmt.Errorf("failed to list patients by status: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ExistsByDocument(ctx context.Context, documentNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM patients WHERE document_number = $1)`
	var exists bool
	if err := q(ctx, r.db).GetContext(ctx, &exists, query, documentNumber); err != nil {
		return false, fmt.Errorf("failed to check patient document: %w", err)
	}
	return exists, nil
}

func (r *patientRepository) CountByAffiliationType(ctx context.Context, affiliationType model.AffiliationType) (int64, error) {
	query := `SELECT COUNT(*) FROM patients WHERE affiliation_type = $1 AND deleted = FALSE`
	var count int64
	if err := q(ctx, r.db).GetContext(ctx, &count, query, affiliationType); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}
