package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/repository"
	"github.com/meditrack/authorization-api/internal/service/access"
	"github.com/meditrack/authorization-api/pkg/auth"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/security"
)

type UserService interface {
	RegisterStaff(ctx context.Context, actorID uuid.UUID, req *model.RegisterUserRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Get(ctx context.Context, actorID, userID uuid.UUID) (*model.User, error)
	Deactivate(ctx context.Context, actorID, userID uuid.UUID) error
	Activate(ctx context.Context, actorID, userID uuid.UUID) error
}

type Service struct {
	users  repository.UserRepository
	tx     repository.TxManager
	access *access.Checker
	hasher security.PasswordHasher
	tokens auth.JWTService
	logger *logger.Logger
}

func NewService(users repository.UserRepository, tx repository.TxManager,
	checker *access.Checker, hasher security.PasswordHasher,
	tokens auth.JWTService, log *logger.Logger) *Service {

	return &Service{
		users:  users,
		tx:     tx,
		access: checker,
		hasher: hasher,
		tokens: tokens,
		logger: log,
	}
}

// RegisterStaff creates a ROLE_MEDICO or ROLE_ADMIN user. Admin only;
// patient logins are created through patient registration.
func (s *Service) RegisterStaff(ctx context.Context, actorID uuid.UUID, req *model.RegisterUserRequest) (*model.User, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, errors.Unauthorized("only administrators can register staff users")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser(req.Username, req.Email, hashed, model.UserRole(req.Role), nil)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := s.users.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return fmt.Errorf("checking username uniqueness: %w", err)
		}
		if taken {
			return errors.Duplicate("user", "username", user.Username)
		}

		taken, err = s.users.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("checking email uniqueness: %w", err)
		}
		if taken {
			return errors.Duplicate("user", "email", user.Email)
		}

		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff user registered", "username", user.Username, "role", string(user.Role))
	return user, nil
}

// Login verifies the credentials and issues an access token. Unknown
// usernames and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, errors.Unauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, errors.Unauthorized("account is disabled")
	}
	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, errors.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("signing token: %w", err))
	}

	s.logger.Info("user logged in", "username", user.Username)
	return &model.LoginResponse{Token: token, User: user}, nil
}

// Get returns a user record. Admins read anyone; other users only
// themselves.
func (s *Service) Get(ctx context.Context, actorID, userID uuid.UUID) (*model.User, error) {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != user.ID {
		return nil, errors.Unauthorized("no permission to access this user")
	}
	return user, nil
}

// Deactivate disables a login. Admin only; admins cannot disable
// themselves.
func (s *Service) Deactivate(ctx context.Context, actorID, userID uuid.UUID) error {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return errors.Unauthorized("only administrators can deactivate users")
	}
	if actor.ID == userID {
		return errors.BusinessRule("administrators cannot deactivate their own account")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("deactivating user: %w", err)
	}
	s.access.Invalidate(user.ID)
	return nil
}

// Activate re-enables a disabled login. Admin only.
func (s *Service) Activate(ctx context.Context, actorID, userID uuid.UUID) error {
	actor, err := s.access.Resolve(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return errors.Unauthorized("only administrators can activate users")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Activate(); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("activating user: %w", err)
	}
	s.access.Invalidate(user.ID)
	return nil
}
