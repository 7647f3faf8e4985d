package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// The role new accounts are assigned at registration.
const defaultRoleName = "user"

// UserStore is the persistence surface consumed by UserService.
// *db.UserRepository implements it.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// RoleFinder resolves role names during registration
type RoleFinder interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
}

// SessionIssuer issues and revokes opaque session tokens.
// *auth.Sessions implements it.
type SessionIssuer interface {
	Create(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	Destroy(ctx context.Context, token string) error
}

// RegisterInput carries the fields accepted at registration
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName *string
}

// UpdateProfileInput carries partial profile updates
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	Password    *string
}

// UserService handles registration, login and profile management
type UserService struct {
	users    UserStore
	roles    RoleFinder
	sessions SessionIssuer
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, roles RoleFinder, sessions SessionIssuer) *UserService {
	return &UserService{
		users:    users,
		roles:    roles,
		sessions: sessions,
		logger:   logging.WithComponent("user-service"),
	}
}

// Register creates a new account under the default role
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Username == "" || input.Email == "" {
		return nil, Validationf("username and email are required")
	}
	if len(input.Password) < 8 {
		return nil, Validationf("password must be at least 8 characters")
	}

	role, err := s.roles.GetByName(ctx, defaultRoleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.New("default role is not seeded")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		DisplayName:  toNullString(input.DisplayName),
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("username or email already taken")
		}
		return nil, err
	}
	user.Role = role

	s.logger.Info("user registered", zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues a session. The username field also
// accepts an email address. Bad credentials are reported uniformly, without
// revealing whether the account exists.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, *models.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		user, err = s.users.GetByEmail(ctx, username)
		if err != nil {
			return nil, nil, err
		}
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Debug("login rejected", zap.String("username", username))
		return nil, nil, auth.ErrUnauthenticated
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return user, session, nil
}

// Logout revokes the caller's session token
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFoundf("user %s", userID)
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own profile
func (s *UserService) UpdateProfile(ctx context.Context, id auth.Identity, input UpdateProfileInput) (*models.User, error) {
	user, ok := id.User()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.DisplayName != nil {
		fields["display_name"] = *input.DisplayName
	}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.AvatarURL != nil {
		fields["avatar_url"] = *input.AvatarURL
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, Validationf("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if err := s.users.Update(ctx, user.ID, fields); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}
