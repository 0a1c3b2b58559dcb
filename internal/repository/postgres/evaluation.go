package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	apperrors "github.com/meditrack/authorization-api/pkg/errors"
)

type evaluationRepository struct {
	db *sqlx.DB
}

func NewEvaluationRepository(db *sqlx.DB) repository.EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *model.CoverageEvaluation) error {
	query := `
		INSERT INTO coverage_evaluations (id, authorization_id, coverage_percentage,
			copay_amount, approved, evaluation_date, insurance_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		evaluation.ID,
		evaluation.AuthorizationID,
		evaluation.CoveragePercentage,
		evaluation.CopayAmount,
		evaluation.Approved,
		evaluation.EvaluationDate,
		evaluation.InsuranceResponse,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepository) Get(ctx context.Context, id uuid.UUID) (*model.CoverageEvaluation, error) {
	query := `SELECT * FROM coverage_evaluations WHERE id = $1`
	var evaluation model.CoverageEvaluation
	err := q(ctx, r.db).GetContext(ctx, &evaluation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("evaluation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return &evaluation, nil
}

func (r *evaluationRepository) GetByAuthorization(ctx context.Context, authorizationID uuid.UUID) (*model.CoverageEvaluation, error) {
	query := `SELECT * FROM coverage_evaluations WHERE authorization_id = $1`
	var evaluation model.CoverageEvaluation
	err := q(ctx, r.db).GetContext(ctx, &evaluation, query, authorizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("evaluation", authorizationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation by authorization: %w", err)
	}
	return &evaluation, nil
}

func (r *evaluationRepository) ExistsByAuthorization(ctx context.Context, authorizationID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM coverage_evaluations WHERE authorization_id = $1)`
	var exists bool
	if err := q(ctx, r.db).GetContext(ctx, &exists, query, authorizationID); err != nil {
		return false, fmt.Errorf("failed to check evaluation existence: %w", err)
	}
	return exists, nil
}

func (r *evaluationRepository) ListByApproved(ctx context.Context, approved bool) ([]*model.CoverageEvaluation, error) {
	query := `SELECT * FROM coverage_evaluations WHERE approved = $1 ORDER BY evaluation_date DESC`
	var evaluations []*model.CoverageEvaluation
	if err := q(ctx, r.db).SelectContext(ctx, &evaluations, query, approved); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evaluations, nil
}

func (r *evaluationRepository) AverageCoverage(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(AVG(coverage_percentage), 0) FROM coverage_evaluations`
	var avg float64
	if err := q(ctx, r.db).GetContext(ctx, &avg, query); err != nil {
		return 0, fmt.Errorf("failed to compute average coverage: %w", err)
	}
	return avg, nil
}
