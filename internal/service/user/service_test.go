package user

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository/memory"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/auth"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/security"
)

type fixture struct {
	svc    *Service
	users  *memory.UserRepository
	hasher security.PasswordHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepository()
	hasher := security.NewBcryptHasher(4)
	svc := NewService(users, memory.TxManager{}, access.NewChecker(users), hasher,
		auth.NewJWTService("test-secret", 1),
		logger.New(&logger.Config{Level: "disabled", Output: io.Discard}))
	return &fixture{svc: svc, users: users, hasher: hasher}
}

func (f *fixture) addAdmin(t *testing.T) *model.User {
	t.Helper()
	hashed, err := f.hasher.Hash("admin-pass-1")
	require.NoError(t, err)
	admin, err := model.NewUser("admin_"+uuid.NewString()[:8], uuid.NewString()[:8]+"@clinic.com",
		hashed, model.RoleAdmin, nil)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), admin))
	return admin
}

func TestRegisterStaff(t *testing.T) {
	ctx := context.Background()

	t.Run("admin registers doctor", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addAdmin(t)

		u, err := f.svc.RegisterStaff(ctx, admin.ID, &model.RegisterUserRequest{
			Username: "dr_lopez",
			Email:    "lopez@clinic.com",
			Password: "clinica-123",
			Role:     "ROLE_MEDICO",
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleMedico, u.Role)
		assert.Nil(t, u.PatientID)
	})

	t.Run("doctor cannot register staff", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addAdmin(t)

		doc, err := f.svc.RegisterStaff(ctx, admin.ID, &model.RegisterUserRequest{
			Username: "dr_lopez", Email: "lopez@clinic.com", Password: "clinica-123", Role: "ROLE_MEDICO",
		})
		require.NoError(t, err)

		_, err = f.svc.RegisterStaff(ctx, doc.ID, &model.RegisterUserRequest{
			Username: "dr_ruiz", Email: "ruiz@clinic.com", Password: "clinica-123", Role: "ROLE_MEDICO",
		})
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addAdmin(t)

		_, err := f.svc.RegisterStaff(ctx, admin.ID, &model.RegisterUserRequest{
			Username: "dr_lopez", Email: "lopez@clinic.com", Password: "clinica-123", Role: "ROLE_MEDICO",
		})
		require.NoError(t, err)

		_, err = f.svc.RegisterStaff(ctx, admin.ID, &model.RegisterUserRequest{
			Username: "dr_lopez", Email: "otro@clinic.com", Password: "clinica-123", Role: "ROLE_MEDICO",
		})
		assert.True(t, errors.IsKind(err, errors.KindDuplicate))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addAdmin(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := f.svc.Login(ctx, &model.LoginRequest{Username: admin.Username, Password: "admin-pass-1"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, admin.ID, resp.User.ID)
	})

	t.Run("username is case insensitive", func(t *testing.T) {
		_, err := f.svc.Login(ctx, &model.LoginRequest{
			Username: "  " + admin.Username + " ", Password: "admin-pass-1",
		})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, &model.LoginRequest{Username: admin.Username, Password: "wrong-pass-1"})
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})

	t.Run("unknown username matches wrong password error", func(t *testing.T) {
		_, err := f.svc.Login(ctx, &model.LoginRequest{Username: "ghost", Password: "whatever-1"})
		require.True(t, errors.IsKind(err, errors.KindUnauthorized))
		assert.Contains(t, err.Error(), "invalid credentials")
	})

	t.Run("inactive account", func(t *testing.T) {
		other := f.addAdmin(t)
		require.NoError(t, f.svc.Deactivate(ctx, admin.ID, other.ID))

		_, err := f.svc.Login(ctx, &model.LoginRequest{Username: other.Username, Password: "admin-pass-1"})
		assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	})
}

func TestDeactivateActivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addAdmin(t)
	other := f.addAdmin(t)

	t.Run("cannot deactivate self", func(t *testing.T) {
		err := f.svc.Deactivate(ctx, admin.ID, admin.ID)
		assert.True(t, errors.IsKind(err, errors.KindBusinessRule))
	})

	t.Run("deactivate then activate", func(t *testing.T) {
		require.NoError(t, f.svc.Deactivate(ctx, admin.ID, other.ID))

		u, err := f.users.Get(ctx, other.ID)
		require.NoError(t, err)
		assert.False(t, u.Active)

		err = f.svc.Deactivate(ctx, admin.ID, other.ID)
		assert.True(t, errors.IsKind(err, errors.KindConflict))

		require.NoError(t, f.svc.Activate(ctx, admin.ID, other.ID))
		u, err = f.users.Get(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, u.Active)
	})
}
