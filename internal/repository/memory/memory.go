// Package memory holds in-memory repository implementations used by
// service tests. Writes store copies so later mutations of the caller's
// value do not leak into the store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/pkg/errors"
)

// TxManager runs fn directly; the in-memory stores are already atomic
// per operation.
type TxManager struct{}

func (TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type PatientRepository struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]model.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: make(map[uuid.UUID]model.Patient)}
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[patient.ID] = *patient
	return nil
}

func (r *PatientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok || p.Deleted {
		return nil, errors.NotFound("patient", id.String())
	}
	out := p
	return &out, nil
}

func (r *PatientRepository) GetByDocument(_ context.Context, documentNumber string) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.DocumentNumber == documentNumber && !p.Deleted {
			out := p
			return &out, nil
		}
	}
	return nil, errors.NotFound("patient", documentNumber)
}

func (r *PatientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patient.ID]; !ok {
		return errors.NotFound("patient", patient.ID.String())
	}
	r.patients[patient.ID] = *patient
	return nil
}

func (r *PatientRepository) ListActive(_ context.Context) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Patient
	for _, p := range r.patients {
		if p.AffiliationStatus == model.AffiliationStatusActive && !p.Deleted {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *PatientRepository) ListByStatus(_ context.Context, status model.AffiliationStatus) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Patient
	for _, p := range r.patients {
		if p.AffiliationStatus == status && !p.Deleted {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *PatientRepository) ExistsByDocument(_ context.Context, documentNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.DocumentNumber == documentNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *PatientRepository) CountByAffiliationType(_ context.Context, affiliationType model.AffiliationType) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.patients {
		if p.AffiliationType == affiliationType && !p.Deleted {
			n++
		}
	}
	return n, nil
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("user", id.String())
	}
	out := u
	return &out, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, errors.NotFound("user", username)
}

func (r *UserRepository) GetByPatient(_ context.Context, patientID uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PatientID != nil && *u.PatientID == patientID {
			out := u
			return &out, nil
		}
	}
	return nil, errors.NotFound("user", patientID.String())
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("user", user.ID.String())
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type AuthorizationRepository struct {
	mu             sync.RWMutex
	authorizations map[uuid.UUID]model.MedicalAuthorization
}

func NewAuthorizationRepository() *AuthorizationRepository {
	return &AuthorizationRepository{authorizations: make(map[uuid.UUID]model.MedicalAuthorization)}
}

func (r *AuthorizationRepository) Create(_ context.Context, authorization *model.MedicalAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorizations[authorization.ID] = *authorization
	return nil
}

func (r *AuthorizationRepository) Get(_ context.Context, id uuid.UUID) (*model.MedicalAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.authorizations[id]
	if !ok || a.Deleted {
		return nil, errors.NotFound("authorization", id.String())
	}
	out := a
	return &out, nil
}

func (r *AuthorizationRepository) Update(_ context.Context, authorization *model.MedicalAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authorizations[authorization.ID]; !ok {
		return errors.NotFound("authorization", authorization.ID.String())
	}
	r.authorizations[authorization.ID] = *authorization
	return nil
}

func (r *AuthorizationRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.MedicalAuthorization
	for _, a := range r.authorizations {
		if a.PatientID == patientID && !a.Deleted {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AuthorizationRepository) ListByStatus(_ context.Context, status model.AuthorizationStatus) ([]*model.MedicalAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.MedicalAuthorization
	for _, a := range r.authorizations {
		if a.Status == status && !a.Deleted {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AuthorizationRepository) ListByDateRange(_ context.Context, start, end time.Time) ([]*model.MedicalAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.MedicalAuthorization
	for _, a := range r.authorizations {
		if !a.Deleted && !a.RequestDate.Before(start) && !a.RequestDate.After(end) {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AuthorizationRepository) ListByRequester(_ context.Context, userID uuid.UUID) ([]*model.MedicalAuthorization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.MedicalAuthorization
	for _, a := range r.authorizations {
		if a.RequestedBy == userID && !a.Deleted {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AuthorizationRepository) CountByStatus(_ context.Context, status model.AuthorizationStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.authorizations {
		if a.Status == status && !a.Deleted {
			n++
		}
	}
	return n, nil
}

type EvaluationRepository struct {
	mu          sync.RWMutex
	evaluations map[uuid.UUID]model.CoverageEvaluation
}

func NewEvaluationRepository() *EvaluationRepository {
	return &EvaluationRepository{evaluations: make(map[uuid.UUID]model.CoverageEvaluation)}
}

func (r *EvaluationRepository) Create(_ context.Context, evaluation *model.CoverageEvaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluations[evaluation.ID] = *evaluation
	return nil
}

func (r *EvaluationRepository) Get(_ context.Context, id uuid.UUID) (*model.CoverageEvaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.evaluations[id]
	if !ok {
		return nil, errors.NotFound("evaluation", id.String())
	}
	out := e
	return &out, nil
}

func (r *EvaluationRepository) GetByAuthorization(_ context.Context, authorizationID uuid.UUID) (*model.CoverageEvaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.evaluations {
		if e.AuthorizationID == authorizationID {
			out := e
			return &out, nil
		}
	}
	return nil, errors.NotFound("evaluation", authorizationID.String())
}

func (r *EvaluationRepository) ExistsByAuthorization(_ context.Context, authorizationID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.evaluations {
		if e.AuthorizationID == authorizationID {
			return true, nil
		}
	}
	return false, nil
}

func (r *EvaluationRepository) ListByApproved(_ context.Context, approved bool) ([]*model.CoverageEvaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.CoverageEvaluation
	for _, e := range r.evaluations {
		if e.Approved == approved {
			cp := e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *EvaluationRepository) AverageCoverage(_ context.Context) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.evaluations) == 0 {
		return 0, nil
	}
	var sum float64
	for _, e := range r.evaluations {
		sum += float64(e.CoveragePercentage)
	}
	return sum / float64(len(r.evaluations)), nil
}
