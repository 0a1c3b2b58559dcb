package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	"github.com/meditrack/authorization-api/pkg/errors"
)

const (
	actorCacheTTL     = time.Minute
	actorCacheCleanup = 5 * time.Minute
)

// Checker is the single access-policy decision point consulted by every
// use case. Callers resolve the acting user once per request and pass the
// actor value explicitly; no ambient security context exists.
type Checker struct {
	users repository.UserRepository
	cache *gocache.Cache
}

func NewChecker(users repository.UserRepository) *Checker {
	return &Checker{
		users: users,
		cache: gocache.New(actorCacheTTL, actorCacheCleanup),
	}
}

// Resolve loads the acting user by id. Lookups are cached briefly since a
// single request consults the policy several times.
func (c *Checker) Resolve(ctx context.Context, actorID uuid.UUID) (*model.User, error) {
	if actorID == uuid.Nil {
		return nil, errors.Unauthorized("missing acting user")
	}

	if cached, ok := c.cache.Get(actorID.String()); ok {
		return cached.(*model.User), nil
	}

	actor, err := c.users.Get(ctx, actorID)
	if err != nil {
		return nil, errors.Unauthorized("acting user not found")
	}
	if !actor.Active {
		return nil, errors.Unauthorized("acting user is inactive")
	}

	c.cache.SetDefault(actorID.String(), actor)
	return actor, nil
}

// Invalidate drops a cached actor after a mutation (e.g. deactivation).
func (c *Checker) Invalidate(actorID uuid.UUID) {
	c.cache.Delete(actorID.String())
}

// CanReadPatient allows staff to read any patient and a patient user only
// their own record.
func (c *Checker) CanReadPatient(actor *model.User, patientID uuid.UUID) error {
	if !actor.CanAccessPatient(patientID) {
		return errors.Unauthorized("no permission to access this patient")
	}
	return nil
}

// CanUpdatePatient follows the read rule: patients may update only their
// own record.
func (c *Checker) CanUpdatePatient(actor *model.User, patientID uuid.UUID) error {
	if !actor.CanAccessPatient(patientID) {
		return errors.Unauthorized("no permission to update this patient")
	}
	return nil
}

// CanDeactivatePatient is admin-only.
func (c *Checker) CanDeactivatePatient(actor *model.User) error {
	if !actor.IsAdmin() {
		return errors.Unauthorized("only administrators can deactivate patients")
	}
	return nil
}

// CanReadAuthorization scopes a patient user to authorizations owned by
// their linked patient.
func (c *Checker) CanReadAuthorization(actor *model.User, authorization *model.MedicalAuthorization) error {
	if actor.IsAdmin() || actor.IsDoctor() {
		return nil
	}
	if actor.IsPatient() && actor.HasPatient() && authorization.BelongsToPatient(*actor.PatientID) {
		return nil
	}
	return errors.Unauthorized("no permission to access this authorization")
}

// CanCreateAuthorization is staff-only. The domain itself would let a
// patient request for themself; the exposed surface does not.
func (c *Checker) CanCreateAuthorization(actor *model.User, patientID uuid.UUID) error {
	if actor.IsPatient() {
		return errors.Unauthorized("patients cannot create authorizations")
	}
	if !actor.CanCreateAuthorizationFor(patientID) {
		return errors.Unauthorized("no permission to create authorizations for this patient")
	}
	return nil
}

// CanEvaluate gates coverage evaluation to staff.
func (c *Checker) CanEvaluate(actor *model.User) error {
	if actor.IsPatient() {
		return errors.Unauthorized("patients cannot evaluate authorizations")
	}
	return nil
}

// CanListPending is staff-only.
func (c *Checker) CanListPending(actor *model.User) error {
	if actor.IsPatient() {
		return errors.Unauthorized("patients cannot list pending authorizations")
	}
	return nil
}

// CanUpdateStatus gates manual status transitions to administrators.
func (c *Checker) CanUpdateStatus(actor *model.User) error {
	if !actor.IsAdmin() {
		return errors.Unauthorized("only administrators can change authorization status")
	}
	return nil
}

// CanModifyAuthorization covers description updates and soft deletes.
func (c *Checker) CanModifyAuthorization(actor *model.User) error {
	if !actor.CanModifyAuthorization() {
		return errors.Unauthorized("no permission to modify authorizations")
	}
	return nil
}
