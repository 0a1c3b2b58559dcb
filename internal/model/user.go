package model

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/pkg/errors"
)

type UserRole string

const (
	RolePaciente UserRole = "ROLE_PACIENTE"
	RoleMedico   UserRole = "ROLE_MEDICO"
	RoleAdmin    UserRole = "ROLE_ADMIN"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// User represents a system user with credentials and a single role.
// A ROLE_PACIENTE user is linked 1:1 to a Patient; staff roles are not.
type User struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Username  string     `db:"username" json:"username"`
	Email     string     `db:"email" json:"email"`
	Password  string     `db:"password" json:"-"`
	Role      UserRole   `db:"role" json:"role"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// NewUser builds an active user. The password must already be hashed.
func NewUser(username, email, hashedPassword string, role UserRole, patientID *uuid.UUID) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if hashedPassword == "" {
		return nil, errors.Validation("password is required")
	}
	if !role.valid() {
		return nil, errors.Validation("invalid role: %s", role)
	}
	if err := validatePatientIDForRole(role, patientID); err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Username:  strings.ToLower(strings.TrimSpace(username)),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hashedPassword,
		Role:      role,
		PatientID: patientID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsPatient() bool { return u.Role == RolePaciente }
func (u *User) IsDoctor() bool  { return u.Role == RoleMedico }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

func (u *User) HasPatient() bool { return u.PatientID != nil }

// CanAccessPatient reports whether the user may read a patient's data.
// Staff read any patient; a patient user only their own linked record.
func (u *User) CanAccessPatient(patientID uuid.UUID) bool {
	if patientID == uuid.Nil {
		return false
	}
	if u.IsAdmin() || u.IsDoctor() {
		return true
	}
	if u.IsPatient() {
		return u.PatientID != nil && *u.PatientID == patientID
	}
	return false
}

// CanCreateAuthorizationFor follows the same shape as CanAccessPatient.
func (u *User) CanCreateAuthorizationFor(patientID uuid.UUID) bool {
	if patientID == uuid.Nil {
		return false
	}
	if u.IsAdmin() || u.IsDoctor() {
		return true
	}
	if u.IsPatient() {
		return u.PatientID != nil && *u.PatientID == patientID
	}
	return false
}

// CanModifyAuthorization is true for staff only.
func (u *User) CanModifyAuthorization() bool {
	return u.IsAdmin() || u.IsDoctor()
}

func (u *User) Deactivate() error {
	if !u.Active {
		return errors.Conflict("user already inactive: %s", u.ID)
	}
	u.Active = false
	return nil
}

func (u *User) Activate() error {
	if u.Active {
		return errors.Conflict("user already active: %s", u.ID)
	}
	u.Active = true
	return nil
}

// UpdateEmail changes the login email of an active user.
func (u *User) UpdateEmail(email string) error {
	if !u.Active {
		return errors.Conflict("cannot update email of an inactive user: %s", u.ID)
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(email))
	return nil
}

// UpdatePassword replaces the stored hash. The new password must already be
// hashed.
func (u *User) UpdatePassword(hashedPassword string) error {
	if hashedPassword == "" {
		return errors.Validation("password is required")
	}
	if !u.Active {
		return errors.Conflict("cannot update password of an inactive user: %s", u.ID)
	}
	u.Password = hashedPassword
	return nil
}

func (r UserRole) valid() bool {
	switch r {
	case RolePaciente, RoleMedico, RoleAdmin:
		return true
	}
	return false
}

func validateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return errors.Validation("username is required")
	}
	if utf8.RuneCountInString(trimmed) < 3 {
		return errors.Validation("username must have at least 3 characters")
	}
	if utf8.RuneCountInString(trimmed) > 50 {
		return errors.Validation("username cannot exceed 50 characters")
	}
	if !usernamePattern.MatchString(trimmed) {
		return errors.Validation("username may only contain letters, digits and underscores")
	}
	return nil
}

func validatePatientIDForRole(role UserRole, patientID *uuid.UUID) error {
	if role == RolePaciente && patientID == nil {
		return errors.Validation("a ROLE_PACIENTE user must be linked to a patient")
	}
	if (role == RoleMedico || role == RoleAdmin) && patientID != nil {
		return errors.Validation("a %s user must not be linked to a patient", role)
	}
	return nil
}
