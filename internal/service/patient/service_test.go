package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository/memory"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/security"
)

type fixture struct {
	svc      *Service
	patients *memory.PatientRepository
	users    *memory.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	patients := memory.NewPatientRepository()
	users := memory.NewUserRepository()
	checker := access.NewChecker(users)
	hasher := security.NewBcryptHasher(4)
	svc := NewService(patients, users, memory.TxManager{}, checker, hasher)
	return &fixture{svc: svc, patients: patients, users: users}
}

func (f *fixture) addAdmin(t *testing.T) *model.User {
	t.Helper()
	admin, err := model.NewUser("admin_"+uuid.NewString()[:8], "admin@clinic.com", "hashed", model.RoleAdmin, nil)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), admin))
	return admin
}

func (f *fixture) addDoctor(t *testing.T) *model.User {
	t.Helper()
	doc, err := model.NewUser("medico_"+uuid.NewString()[:8], "medico@clinic.com", "hashed", model.RoleMedico, nil)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), doc))
	return doc
}

func registerRequest(doc, username string) *model.RegisterPatientRequest {
	return &model.RegisterPatientRequest{
		DocumentNumber:  doc,
		FirstName:       "Ana",
		LastName:        "Torres",
		Email:           username + "@mail.com",
		AffiliationType: "CONTRIBUTIVO",
		AffiliationDate: time.Now().Add(-24 * time.Hour),
		Username:        username,
		Password:        "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates patient and linked user", func(t *testing.T) {
		f := newFixture(t)

		p, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
		require.NoError(t, err)
		assert.Equal(t, model.AffiliationStatusActive, p.AffiliationStatus)

		user, err := f.users.GetByPatient(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RolePaciente, user.Role)
		assert.Equal(t, "ana_torres", user.Username)
		assert.NotEqual(t, "s3cret-pass", user.Password)
	})

	t.Run("duplicate document", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, registerRequest("10203040", "otra_ana"))
		assert.True(t, errors.IsKind(err, errors.KindDuplicate))
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, registerRequest("50607080", "ana_torres"))
		assert.True(t, errors.IsKind(err, errors.KindDuplicate))
	})

	t.Run("invalid domain data", func(t *testing.T) {
		f := newFixture(t)
		req := registerRequest("123", "ana_torres")
		_, err := f.svc.Register(ctx, req)
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addAdmin(t)

	p, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
	require.NoError(t, err)
	owner, err := f.users.GetByPatient(ctx, p.ID)
	require.NoError(t, err)

	t.Run("staff reads any patient", func(t *testing.T) {
		got, err := f.svc.Get(ctx, admin.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("owner reads own record", func(t *testing.T) {
		got, err := f.svc.Get(ctx, owner.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("other patient denied", func(t *testing.T) {
		other, err := f.svc.Register(ctx, registerRequest("50607080", "otro_user"))
		require.NoError(t, err)
		otherUser, err := f.users.GetByPatient(ctx, other.ID)
		require.NoError(t, err)

		_, err = f.svc.Get(ctx, otherUser.ID, p.ID)
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("unknown id beats permission", func(t *testing.T) {
		_, err := f.svc.Get(ctx, admin.ID, uuid.New())
		assert.True(t, errors.IsKind(err, errors.KindNotFound))
	})

	t.Run("by document", func(t *testing.T) {
		got, err := f.svc.GetByDocument(ctx, admin.ID, "10203040")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doctor := f.addDoctor(t)

	p1, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, registerRequest("50607080", "otro_user"))
	require.NoError(t, err)

	t.Run("staff sees everyone active", func(t *testing.T) {
		list, err := f.svc.List(ctx, doctor.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("staff filters by status", func(t *testing.T) {
		require.NoError(t, p1.Suspend())
		require.NoError(t, f.patients.Update(ctx, p1))

		suspended, err := f.svc.ListByStatus(ctx, doctor.ID, model.AffiliationStatusSuspended)
		require.NoError(t, err)
		require.Len(t, suspended, 1)
		assert.Equal(t, p1.ID, suspended[0].ID)

		require.NoError(t, p1.Activate())
		require.NoError(t, f.patients.Update(ctx, p1))
	})

	t.Run("bad status filter", func(t *testing.T) {
		_, err := f.svc.ListByStatus(ctx, doctor.ID, model.AffiliationStatus("UNKNOWN"))
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("patient cannot filter", func(t *testing.T) {
		owner, err := f.users.GetByPatient(ctx, p1.ID)
		require.NoError(t, err)

		_, err = f.svc.ListByStatus(ctx, owner.ID, model.AffiliationStatusActive)
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("patient sees only self", func(t *testing.T) {
		owner, err := f.users.GetByPatient(ctx, p1.ID)
		require.NoError(t, err)

		list, err := f.svc.List(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, p1.ID, list[0].ID)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addAdmin(t)

	p, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
	require.NoError(t, err)

	t.Run("updates fields and cascades email", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, admin.ID, p.ID, &model.UpdatePatientRequest{
			FirstName: "Ana Maria",
			LastName:  "Torres",
			Email:     "ana.nueva@mail.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "ana.nueva@mail.com", updated.Email)

		user, err := f.users.GetByPatient(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana.nueva@mail.com", user.Email)
	})

	t.Run("other patient cannot update", func(t *testing.T) {
		other, err := f.svc.Register(ctx, registerRequest("50607080", "otro_user"))
		require.NoError(t, err)
		otherUser, err := f.users.GetByPatient(ctx, other.ID)
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, otherUser.ID, p.ID, &model.UpdatePatientRequest{
			FirstName: "X",
			LastName:  "Y",
			Email:     "x@y.com",
		})
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addAdmin(t)
	doctor := f.addDoctor(t)

	p, err := f.svc.Register(ctx, registerRequest("10203040", "ana_torres"))
	require.NoError(t, err)

	t.Run("doctor denied", func(t *testing.T) {
		err := f.svc.Deactivate(ctx, doctor.ID, p.ID)
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("admin deactivates patient and login", func(t *testing.T) {
		require.NoError(t, f.svc.Deactivate(ctx, admin.ID, p.ID))

		got, err := f.patients.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AffiliationStatusInactive, got.AffiliationStatus)
		assert.False(t, got.Deleted)

		user, err := f.users.GetByPatient(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, user.Active)
	})

	t.Run("deactivating again is a no-op", func(t *testing.T) {
		require.NoError(t, f.svc.Deactivate(ctx, admin.ID, p.ID))

		got, err := f.patients.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AffiliationStatusInactive, got.AffiliationStatus)
	})
}
