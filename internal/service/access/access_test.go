package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository/memory"
	"github.com/meditrack/authorization-api/pkg/errors"
)

func newStaff(t *testing.T, role model.UserRole) *model.User {
	t.Helper()
	u, err := model.NewUser("staff_"+uuid.NewString()[:8], "staff@clinic.com", "hashed", role, nil)
	require.NoError(t, err)
	return u
}

func newPatientUser(t *testing.T, patientID uuid.UUID) *model.User {
	t.Helper()
	u, err := model.NewUser("pat_"+uuid.NewString()[:8], "patient@mail.com", "hashed", model.RolePaciente, &patientID)
	require.NoError(t, err)
	return u
}

func TestResolve(t *testing.T) {
	users := memory.NewUserRepository()
	checker := NewChecker(users)
	ctx := context.Background()

	admin := newStaff(t, model.RoleAdmin)
	require.NoError(t, users.Create(ctx, admin))

	t.Run("known user", func(t *testing.T) {
		actor, err := checker.Resolve(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, actor.ID)
	})

t.Run("nil actor", func(t *testing.T) {
		_, err := checker.Resolve(ctx, uuid.Nil)
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("unknown actor", func(t *testing.T) {
		_, err := checker.Resolve(ctx, uuid.New())
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("inactive actor", func(t *testing.T) {
		medic := newStaff(t, model.RoleMedico)
		require.NoError(t, medic.Deactivate())
		require.NoError(t, users.Create(ctx, medic))

		_, err := checker.Resolve(ctx, medic.ID)
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})
}

func TestPatientAccess(t *testing.T) {
	checker := NewChecker(memory.NewUserRepository())
	patientID := uuid.New()

	admin := newStaff(t, model.RoleAdmin)
	medic := newStaff(t, model.RoleMedico)
	owner := newPatientUser(t, patientID)
	other := newPatientUser(t, uuid.New())

	assert.NoError(t, checker.CanReadPatient(admin, patientID))
	assert.NoError(t, checker.CanReadPatient(medic, patientID))
	assert.NoError(t, checker.CanReadPatient(owner, patientID))

	err := checker.CanReadPatient(other, patientID)
	assert.True(t, errors.IsKind(err, errors.KindUnauthorized))

	assert.NoError(t, checker.CanUpdatePatient(owner, patientID))
	err = checker.CanUpdatePatient(other, patientID)
	assert.True(t, errors.IsKind(err, errors.KindUnauthorized))

	assert.NoError(t, checker.CanDeactivatePatient(admin))
	assert.Error(t, checker.CanDeactivatePatient(medic))
	assert.Error(t, checker.CanDeactivatePatient(owner))
}

func TestAuthorizationAccess(t *testing.T) {
	checker := NewChecker(memory.NewUserRepository())
	patientID := uuid.New()

	admin := newStaff(t, model.RoleAdmin)
	medic := newStaff(t, model.RoleMedico)
	owner := newPatientUser(t, patientID)
	other := newPatientUser(t, uuid.New())

	auth, err := model.NewMedicalAuthorization(patientID, model.ServiceConsulta,
		"consulta de control anual", admin.ID)
	require.NoError(t, err)

	assert.NoError(t, checker.CanReadAuthorization(admin, auth))
	assert.NoError(t, checker.CanReadAuthorization(medic, auth))
	assert.NoError(t, checker.CanReadAuthorization(owner, auth))
	assert.True(t, errors.IsKind(checker.CanReadAuthorization(other, auth), errors.KindUnauthorized))

	assert.NoError(t, checker.CanCreateAuthorization(admin, patientID))
	assert.NoError(t, checker.CanCreateAuthorization(medic, patientID))
	assert.Error(t, checker.CanCreateAuthorization(owner, patientID))
	assert.Error(t, checker.CanCreateAuthorization(other, patientID))

	assert.NoError(t, checker.CanEvaluate(admin))
	assert.NoError(t, checker.CanEvaluate(medic))
	assert.Error(t, checker.CanEvaluate(owner))

	assert.NoError(t, checker.CanListPending(admin))
	assert.NoError(t, checker.CanListPending(medic))
	assert.Error(t, checker.CanListPending(owner))

	assert.NoError(t, checker.CanUpdateStatus(admin))
	assert.Error(t, checker.CanUpdateStatus(medic))
	assert.Error(t, checker.CanUpdateStatus(owner))

	assert.NoError(t, checker.CanModifyAuthorization(admin))
	assert.NoError(t, checker.CanModifyAuthorization(medic))
	assert.Error(t, checker.CanModifyAuthorization(owner))
}
