package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/pkg/errors"
)

type ServiceType string

const (
	ServiceConsulta      ServiceType = "CONSULTA"
	ServiceProcedimiento ServiceType = "PROCEDIMIENTO"
	ServiceCirugia       ServiceType = "CIRUGIA"
)

type AuthorizationStatus string

const (
	StatusPendiente  AuthorizationStatus = "PENDIENTE"
	StatusEnRevision AuthorizationStatus = "EN_REVISION"
	StatusAprobada   AuthorizationStatus = "APROBADA"
	StatusRechazada  AuthorizationStatus = "RECHAZADA"
)

const (
	descriptionMinLen = 10
	descriptionMaxLen = 500
)

// MedicalAuthorization is a request for permission to receive a medical
// service. It is created PENDIENTE and moves through the transitions below:
//
//	PENDIENTE   -> EN_REVISION | APROBADA | RECHAZADA
//	EN_REVISION -> APROBADA | RECHAZADA
//
// APROBADA and RECHAZADA are terminal. Soft delete is allowed only from
// PENDIENTE or RECHAZADA.
type MedicalAuthorization struct {
	ID          uuid.UUID           `db:"id" json:"id"`
	PatientID   uuid.UUID           `db:"patient_id" json:"patient_id"`
	ServiceType ServiceType         `db:"service_type" json:"service_type"`
	Description string              `db:"description" json:"description"`
	RequestDate time.Time           `db:"request_date" json:"request_date"`
	Status      AuthorizationStatus `db:"status" json:"status"`
	RequestedBy uuid.UUID           `db:"requested_by" json:"requested_by"`
	Deleted     bool                `db:"deleted" json:"-"`
}

// NewMedicalAuthorization validates the input and builds a pending
// authorization.
func NewMedicalAuthorization(patientID uuid.UUID, serviceType ServiceType,
	description string, requestedBy uuid.UUID) (*MedicalAuthorization, error) {

	if patientID == uuid.Nil {
		return nil, errors.Validation("patient id is required")
	}
	if !serviceType.valid() {
		return nil, errors.Validation("invalid service type: %s", serviceType)
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if requestedBy == uuid.Nil {
		return nil, errors.Validation("requester id is required")
	}

	return &MedicalAuthorization{
		ID:          uuid.New(),
		PatientID:   patientID,
		ServiceType: serviceType,
		Description: strings.TrimSpace(description),
		RequestDate: time.Now(),
		Status:      StatusPendiente,
		RequestedBy: requestedBy,
	}, nil
}

// Approve moves the authorization to APROBADA.
func (a *MedicalAuthorization) Approve() error {
	if a.Deleted {
		return errors.Conflict("cannot approve a deleted authorization: %s", a.ID)
	}
	if a.Status == StatusAprobada {
		return errors.Conflict("authorization already approved: %s", a.ID)
	}
	if a.Status == StatusRechazada {
		return errors.Conflict("cannot approve a rejected authorization: %s", a.ID)
	}
	a.Status = StatusAprobada
	return nil
}

// Reject moves the authorization to RECHAZADA.
func (a *MedicalAuthorization) Reject() error {
	if a.Deleted {
		return errors.Conflict("cannot reject a deleted authorization: %s", a.ID)
	}
	if a.Status == StatusAprobada {
		return errors.Conflict("cannot reject an approved authorization: %s", a.ID)
	}
	if a.Status == StatusRechazada {
		return errors.Conflict("authorization already rejected: %s", a.ID)
	}
	a.Status = StatusRechazada
	return nil
}

// MarkUnderReview moves a pending authorization to EN_REVISION.
func (a *MedicalAuthorization) MarkUnderReview() error {
	if a.Deleted {
		return errors.Conflict("cannot review a deleted authorization: %s", a.ID)
	}
	if a.Status != StatusPendiente {
		return errors.Conflict("only pending authorizations can be put under review: %s", a.ID)
	}
	a.Status = StatusEnRevision
	return nil
}

// Delete tombstones the authorization. The status is left unchanged.
func (a *MedicalAuthorization) Delete() error {
	if a.Deleted {
		return errors.Conflict("authorization already deleted: %s", a.ID)
	}
	if a.Status == StatusAprobada {
		return errors.Conflict("cannot delete an approved authorization: %s", a.ID)
	}
	if a.Status == StatusEnRevision {
		return errors.Conflict("cannot delete an authorization under review: %s", a.ID)
	}
	a.Deleted = true
	return nil
}

// UpdateDescription is permitted only while the authorization is modifiable.
func (a *MedicalAuthorization) UpdateDescription(description string) error {
	if !a.CanBeModified() {
		return errors.Conflict("only pending authorizations can be updated: %s", a.ID)
	}
	if err := validateDescription(description); err != nil {
		return err
	}
	a.Description = strings.TrimSpace(description)
	return nil
}

func (a *MedicalAuthorization) BelongsToPatient(patientID uuid.UUID) bool {
	return a.PatientID == patientID
}

func (a *MedicalAuthorization) IsFinalState() bool {
	return a.Status == StatusAprobada || a.Status == StatusRechazada
}

func (a *MedicalAuthorization) CanBeModified() bool {
	return a.Status == StatusPendiente && !a.Deleted
}

// MinimumCoverageRequired is the advisory coverage floor per service type.
// The external insurance verdict remains authoritative for approval.
func (a *MedicalAuthorization) MinimumCoverageRequired() int {
	switch a.ServiceType {
	case ServiceConsulta:
		return 70
	case ServiceProcedimiento:
		return 80
	case ServiceCirugia:
		return 90
	default:
		return 0
	}
}

func (t ServiceType) valid() bool {
	switch t {
	case ServiceConsulta, ServiceProcedimiento, ServiceCirugia:
		return true
	}
	return false
}

func validateDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return errors.Validation("description is required")
	}
	if utf8.RuneCountInString(trimmed) < descriptionMinLen {
		return errors.Validation("description must have at least %d characters", descriptionMinLen)
	}
	if utf8.RuneCountInString(trimmed) > descriptionMaxLen {
		return errors.Validation("description cannot exceed %d characters", descriptionMaxLen)
	}
	return nil
}
