package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meditrack/authorization-api/pkg/errors"
)

// CoverageEvaluation is the immutable result of evaluating an authorization
// against the external insurance service. At most one evaluation exists per
// authorization.
type CoverageEvaluation struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	AuthorizationID    uuid.UUID       `db:"authorization_id" json:"authorization_id"`
	CoveragePercentage int             `db:"coverage_percentage" json:"coverage_percentage"`
	CopayAmount        decimal.Decimal `db:"copay_amount" json:"copay_amount"`
	Approved           bool            `db:"approved" json:"approved"`
	EvaluationDate     time.Time       `db:"evaluation_date" json:"evaluation_date"`
	InsuranceResponse  string          `db:"insurance_response" json:"insurance_response"`
}

// NewCoverageEvaluation validates the verdict fields and builds the record.
func NewCoverageEvaluation(authorizationID uuid.UUID, coveragePercentage int,
	copayAmount decimal.Decimal, approved bool, insuranceResponse string) (*CoverageEvaluation, error) {

	if authorizationID == uuid.Nil {
		return nil, errors.Validation("authorization id is required")
	}
	if coveragePercentage < 0 || coveragePercentage > 100 {
		return nil, errors.Validation("coverage percentage must be between 0 and 100: %d", coveragePercentage)
	}
	if copayAmount.IsNegative() {
		return nil, errors.Validation("copay amount cannot be negative: %s", copayAmount)
	}

	return &CoverageEvaluation{
		ID:                 uuid.New(),
		AuthorizationID:    authorizationID,
		CoveragePercentage: coveragePercentage,
		CopayAmount:        copayAmount,
		Approved:           approved,
		EvaluationDate:     time.Now(),
		InsuranceResponse:  insuranceResponse,
	}, nil
}

// MeetsCoverageRequirement reports whether the coverage reaches the given
// minimum.
func (e *CoverageEvaluation) MeetsCoverageRequirement(minimumRequired int) (bool, error) {
	if minimumRequired < 0 || minimumRequired > 100 {
		return false, errors.Validation("minimum percentage must be between 0 and 100: %d", minimumRequired)
	}
	return e.CoveragePercentage >= minimumRequired, nil
}

// ExceedsMaxCopay reports whether the patient's share exceeds the given
// ceiling.
func (e *CoverageEvaluation) ExceedsMaxCopay(maxCopayPercentage int) (bool, error) {
	if maxCopayPercentage < 0 || maxCopayPercentage > 100 {
		return false, errors.Validation("maximum percentage must be between 0 and 100: %d", maxCopayPercentage)
	}
	return e.CopayPercentage() > maxCopayPercentage, nil
}

// CopayPercentage is the complement of the coverage percentage.
func (e *CoverageEvaluation) CopayPercentage() int {
	return 100 - e.CoveragePercentage
}

func (e *CoverageEvaluation) BelongsToAuthorization(authorizationID uuid.UUID) bool {
	return e.AuthorizationID == authorizationID
}

// Summary renders a short human-readable verdict line.
func (e *CoverageEvaluation) Summary() string {
	verdict := "RECHAZADO"
	if e.Approved {
		verdict = "APROBADO"
	}
	return fmt.Sprintf("coverage: %d%%, copay: %d%% ($%s), verdict: %s",
		e.CoveragePercentage, e.CopayPercentage(), e.CopayAmount, verdict)
}
