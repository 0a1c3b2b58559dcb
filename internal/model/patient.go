package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/pkg/errors"
)

type AffiliationType string

const (
	AffiliationContributivo AffiliationType = "CONTRIBUTIVO"
	AffiliationSubsidiado   AffiliationType = "SUBSIDIADO"
	AffiliationEspecial     AffiliationType = "ESPECIAL"
)

type AffiliationStatus string

const (
	AffiliationStatusActive    AffiliationStatus = "ACTIVE"
	AffiliationStatusInactive  AffiliationStatus = "INACTIVE"
	AffiliationStatusSuspended AffiliationStatus = "SUSPENDED"
)

// Patient represents an insured patient affiliated to the health system.
type Patient struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	DocumentNumber    string            `db:"document_number" json:"document_number"`
	FirstName         string            `db:"first_name" json:"first_name"`
	LastName          string            `db:"last_name" json:"last_name"`
	Email             string            `db:"email" json:"email"`
	Phone             *string           `db:"phone" json:"phone,omitempty"`
	AffiliationStatus AffiliationStatus `db:"affiliation_status" json:"affiliation_status"`
	AffiliationType   AffiliationType   `db:"affiliation_type" json:"affiliation_type"`
	AffiliationDate   time.Time         `db:"affiliation_date" json:"affiliation_date"`
	Deleted           bool              `db:"deleted" json:"-"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// NewPatient validates the input and builds a patient in ACTIVE status.
func NewPatient(documentNumber, firstName, lastName, email string, phone *string,
	affiliationType AffiliationType, affiliationDate time.Time) (*Patient, error) {

	if err := validateDocumentNumber(documentNumber); err != nil {
		return nil, err
	}
	if err := validatePersonName(firstName, "first name"); err != nil {
		return nil, err
	}
	if err := validatePersonName(lastName, "last name"); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !affiliationType.valid() {
		return nil, errors.Validation("invalid affiliation type: %s", affiliationType)
	}
	if affiliationDate.IsZero() {
		return nil, errors.Validation("affiliation date is required")
	}
	if affiliationDate.After(time.Now()) {
		return nil, errors.Validation("affiliation date cannot be in the future")
	}

	var trimmedPhone *string
	if phone != nil {
		p := strings.TrimSpace(*phone)
		trimmedPhone = &p
	}

	now := time.Now()
	return &Patient{
		ID:                uuid.New(),
		DocumentNumber:    strings.TrimSpace(documentNumber),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Phone:             trimmedPhone,
		AffiliationStatus: AffiliationStatusActive,
		AffiliationType:   affiliationType,
		AffiliationDate:   affiliationDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CanRequestAuthorization reports whether the patient may request a medical
// authorization. Only ACTIVE, non-deleted patients qualify.
func (p *Patient) CanRequestAuthorization() bool {
	return p.AffiliationStatus == AffiliationStatusActive && !p.Deleted
}

func (p *Patient) IsActive() bool {
	return p.AffiliationStatus == AffiliationStatusActive && !p.Deleted
}

// Deactivate sets the affiliation status to INACTIVE.
func (p *Patient) Deactivate() error {
	if p.Deleted {
		return errors.Conflict("patient already deleted: %s", p.ID)
	}
	p.AffiliationStatus = AffiliationStatusInactive
	return nil
}

// Suspend puts the affiliation on hold.
func (p *Patient) Suspend() error {
	if p.Deleted {
		return errors.Conflict("cannot suspend a deleted patient: %s", p.ID)
	}
	if p.AffiliationStatus == AffiliationStatusSuspended {
		return errors.Conflict("patient already suspended: %s", p.ID)
	}
	p.AffiliationStatus = AffiliationStatusSuspended
	return nil
}

// Activate restores a suspended or inactive affiliation.
func (p *Patient) Activate() error {
	if p.Deleted {
		return errors.Conflict("cannot activate a deleted patient: %s", p.ID)
	}
	if p.AffiliationStatus == AffiliationStatusActive {
		return errors.Conflict("patient already active: %s", p.ID)
	}
	p.AffiliationStatus = AffiliationStatusActive
	return nil
}

// Delete tombstones the patient. A deleted patient always ends up INACTIVE.
func (p *Patient) Delete() error {
	if p.Deleted {
		return errors.Conflict("patient already deleted: %s", p.ID)
	}
	p.Deleted = true
	p.AffiliationStatus = AffiliationStatusInactive
	return nil
}

// Update replaces the mutable contact fields after validation.
func (p *Patient) Update(firstName, lastName, email string, phone *string) error {
	if p.Deleted {
		return errors.Conflict("cannot update a deleted patient: %s", p.ID)
	}
	if err := validatePersonName(firstName, "first name"); err != nil {
		return err
	}
	if err := validatePersonName(lastName, "last name"); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	p.FirstName = strings.TrimSpace(firstName)
	p.LastName = strings.TrimSpace(lastName)
	p.Email = strings.ToLower(strings.TrimSpace(email))
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		p.Phone = &trimmed
	} else {
		p.Phone = nil
	}
	return nil
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MaxCopayPercentage returns the copay ceiling bound to the affiliation
// regime.
func (p *Patient) MaxCopayPercentage() int {
	switch p.AffiliationType {
	case AffiliationContributivo:
		return 20
	case AffiliationSubsidiado:
		return 5
	case AffiliationEspecial:
		return 10
	default:
		return 0
	}
}

func (t AffiliationType) valid() bool {
	switch t {
	case AffiliationContributivo, AffiliationSubsidiado, AffiliationEspecial:
		return true
	}
	return false
}

func validateDocumentNumber(documentNumber string) error {
	trimmed := strings.TrimSpace(documentNumber)
	if trimmed == "" {
		return errors.Validation("document number is required")
	}
	if utf8.RuneCountInString(trimmed) < 5 {
		return errors.Validation("document number must have at least 5 characters")
	}
	return nil
}

func validatePersonName(name, field string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.Validation("%s is required", field)
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return errors.Validation("%s must have at least 2 characters", field)
	}
	return nil
}

func validateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return errors.Validation("email is required")
	}
	if !strings.Contains(trimmed, "@") || !strings.Contains(trimmed, ".") {
		return errors.Validation("email has an invalid format")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.Validation("email cannot exceed 100 characters")
	}
	return nil
}
