package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterPatientRequest creates a patient plus its linked ROLE_PACIENTE user.
type RegisterPatientRequest struct {
	DocumentNumber  string    `json:"document_number" binding:"required,min=5"`
	FirstName       string    `json:"first_name" binding:"required,min=2"`
	LastName        string    `json:"last_name" binding:"required,min=2"`
	Email           string    `json:"email" binding:"required,email,max=100"`
	Phone           *string   `json:"phone"`
	AffiliationType string    `json:"affiliation_type" binding:"required,oneof=CONTRIBUTIVO SUBSIDIADO ESPECIAL"`
	AffiliationDate time.Time `json:"affiliation_date" binding:"required,notfuture"`
	Username        string    `json:"username" binding:"required,min=3,max=50,username"`
	Password        string    `json:"password" binding:"required,min=8"`
}

type UpdatePatientRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=2"`
	LastName  string  `json:"last_name" binding:"required,min=2"`
	Email     string  `json:"email" binding:"required,email,max=100"`
	Phone     *string `json:"phone"`
}

// RegisterUserRequest creates a staff user (ROLE_MEDICO or ROLE_ADMIN).
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=ROLE_MEDICO ROLE_ADMIN"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type CreateAuthorizationRequest struct {
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	ServiceType string `json:"service_type" binding:"required,oneof=CONSULTA PROCEDIMIENTO CIRUGIA"`
	Description string `json:"description" binding:"required,min=10,max=500"`
}

type UpdateAuthorizationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APROBADA RECHAZADA EN_REVISION"`
}

type EvaluateAuthorizationRequest struct {
	EstimatedCost decimal.Decimal `json:"estimated_cost" binding:"required"`
}
