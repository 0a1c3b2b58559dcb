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

type authorizationRepository struct {
	db *sqlx.DB
}

func NewAuthorizationRepository(db *sqlx.DB) repository.AuthorizationRepository {
	return &authorizationRepository{db: db}
}

func (r *authorizationRepository) Create(ctx context.Context, authorization *model.MedicalAuthorization) error {
	query := `
		INSERT INTO medical_authorizations (id, patient_id, service_type, description,
			request_date, status, requested_by, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		authorization.ID,
		authorization.PatientID,
		authorization.ServiceType,
		authorization.Description,
		authorization.RequestDate,
		authorization.Status,
		authorization.RequestedBy,
		authorization.Deleted,
	)
	if err != nil {
		return fmt.Errorf("failed to create authorization: %w", err)
	}
	return nil
}

// Get returns an authorization that has not been tombstoned.
func (r *authorizationRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalAuthorization, error) {
	query := `SELECT * FROM medical_authorizations WHERE id = $1 AND deleted = FALSE`
	var authorization model.MedicalAuthorization
	err := q(ctx, r.db).GetContext(ctx, &authorization, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("authorization", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization: %w", err)
	}
	return &authorization, nil
}

func (r *authorizationRepository) Update(ctx context.Context, authorization *model.MedicalAuthorization) error {
	query := `
		UPDATE medical_authorizations
		SET description = $1, status = $2, deleted = $3
		WHERE id = $4
	`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		authorization.Description,
		authorization.Status,
		authorization.Deleted,
		authorization.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update authorization: %w", err)
	}
	return nil
}

func (r *authorizationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	query := `
		SELECT * FROM medical_authorizations
		WHERE patient_id = $1 AND deleted = FALSE
		ORDER BY request_date DESC
	`
	var authorizations []*model.MedicalAuthorization
	if err := q(ctx, r.db).SelectContext(ctx, &authorizations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list authorizations by patient: %w", err)
	}
	return authorizations, nil
}

func (r *authorizationRepository) ListByStatus(ctx context.Context, status model.AuthorizationStatus) ([]*model.MedicalAuthorization, error) {
	query := `
		SELECT * FROM medical_authorizations
		WHERE status = $1 AND deleted = FALSE
		ORDER BY request_date
	`
	var authorizations []*model.MedicalAuthorization
	if err := q(ctx, r.db).SelectContext(ctx, &authorizations, query, status); err != nil {
		return nil, fmt.Errorf("failed to list authorizations by status: %w", err)
	}
	return authorizations, nil
}

func (r *authorizationRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.MedicalAuthorization, error) {
	query := `
		SELECT * FROM medical_authorizations
		WHERE request_date BETWEEN $1 AND $2 AND deleted = FALSE
		ORDER BY request_date
	`
	var authorizations []*model.MedicalAuthorization
	if err := q(ctx, r.db).SelectContext(ctx, &authorizations, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to list authorizations by date range: %w", err)
	}
	return authorizations, nil
}

func (r *authorizationRepository) ListByRequester(ctx context.Context, userID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	query := `
		SELECT * FROM medical_authorizations
		WHERE requested_by = $1 AND deleted = FALSE
		ORDER BY request_date DESC
	`
	var authorizations []*model.MedicalAuthorization
	if err := q(ctx, r.db).SelectContext(ctx, &authorizations, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list authorizations by requester: %w", err)
	}
	return authorizations, nil
}

func (r *authorizationRepository) CountByStatus(ctx context.Context, status model.AuthorizationStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM medical_authorizations WHERE status = $1 AND deleted = FALSE`
	var count int64
	if err := q(ctx, r.db).GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("failed to count authorizations: %w", err)
	}
	return count, nil
}
