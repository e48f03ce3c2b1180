package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/avatar"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/events"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UserService covers registration, sessions, the profile and the avatar.
type UserService interface {
	// Register creates the account and its first session.
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)

	// Login verifies credentials and opens a new session. Unknown email and
	// wrong password both return ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)

	// Authenticate resolves a bearer token to its user. The token must carry
	// a valid signature and still be in the user's live set.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// Logout revokes exactly the given token.
	Logout(ctx context.Context, userID uuid.UUID, token string) error

	// LogoutAll revokes every token of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// UpdateProfile applies an allow-listed patch and returns the result.
	UpdateProfile(ctx context.Context, user *domain.User, patch domain.UserPatch) (*domain.User, error)

	// DeleteSelf removes the user's tasks, then the user.
	DeleteSelf(ctx context.Context, user *domain.User) (*domain.User, error)

	// SetAvatar validates, normalizes and stores an uploaded avatar.
	SetAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error

	// ClearAvatar removes the stored avatar.
	ClearAvatar(ctx context.Context, userID uuid.UUID) error

	// GetAvatar returns the stored PNG bytes.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users   store.UserStore
	tasks   store.TaskStore
	tx      store.Transactor
	hasher  auth.PasswordHasher
	tokens  auth.JWTService
	emitter events.EventEmitter
	logger  *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	tasks store.TaskStore,
	tx store.Transactor,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:   users,
		tasks:   tasks,
		tx:      tx,
		hasher:  hasher,
		tokens:  tokens,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Name, in.Email, in.Password, in.Age)
	if err != nil {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, "", NewServiceError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", NewServiceError("user", "register", "failed to generate token", err)
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}
		return txUsers.AddToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, "", err
		}
		log.Error("failed to register user", slog.String("error", redact.Error(err)))
		return nil, "", NewServiceError("user", "register", "failed to save user", err)
	}
	user.Tokens = []string{token}

	s.notify(ctx, events.AccountCreated, user)

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login implements UserService.Login
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, "", NewServiceError("user", "login", "failed to load user", err)
		}
		// Spend the same hashing time as for a known email.
		_ = s.hasher.Compare(s.timingHash(), password)
		log.Debug("login failed: unknown email")
		return nil, "", ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("password comparison failed", slog.String("error", redact.Error(err)))
		}
		log.Debug("login failed: bad password", slog.String("user_id", user.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// timingHash returns a valid hash of a password nobody knows.
func (s *userServiceImpl) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

// issueToken mints a token for user and adds it to the live set.
func (s *userServiceImpl) issueToken(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", NewServiceError("user", "issue_token", "failed to generate token", err)
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return "", NewServiceError("user", "issue_token", "failed to store token", err)
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByIDAndToken(ctx, claims.UserID, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrRevokedToken
		}
		return nil, NewServiceError("user", "authenticate", "failed to load session", err)
	}
	return user, nil
}

// Logout implements UserService.Logout
func (s *userServiceImpl) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return auth.ErrRevokedToken
		}
		return NewServiceError("user", "logout", "failed to remove token", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("session closed",
		slog.String("user_id", userID.String()))
	return nil
}

// LogoutAll implements UserService.LogoutAll
func (s *userServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearTokens(ctx, userID); err != nil {
		return NewServiceError("user", "logout_all", "failed to clear tokens", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("all sessions closed",
		slog.String("user_id", userID.String()))
	return nil
}

// UpdateProfile implements UserService.UpdateProfile
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	user *domain.User,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return user, nil
	}

	updated, err := user.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}

	if updated.Password != "" {
		hashed, err := s.hasher.Hash(updated.Password)
		if err != nil {
			return nil, NewServiceError("user", "update", "failed to hash password", err)
		}
		updated.HashedPassword = hashed
		updated.Password = ""
	}

	if err := s.users.Update(ctx, updated); err != nil {
		if errors.Is(err, store.ErrEmailExists) || errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		log.Error("failed to update user", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("user", "update", "failed to save user", err)
	}

	log.Info("user profile updated", slog.String("user_id", updated.ID.String()))
	return updated, nil
}

// DeleteSelf implements UserService.DeleteSelf
func (s *userServiceImpl) DeleteSelf(ctx context.Context, user *domain.User) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removed int64
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		n, err := s.tasks.WithTx(tx).DeleteByOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		removed = n
		return s.users.WithTx(tx).Delete(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		log.Error("failed to delete user", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("user", "delete", "failed to delete user", err)
	}

	s.notify(ctx, events.AccountCancelled, user)

	log.Info("user deleted",
		slog.String("user_id", user.ID.String()),
		slog.Int64("tasks_removed", removed))
	return user, nil
}

// SetAvatar implements UserService.SetAvatar
func (s *userServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, filename string, data []byte) error {
	png, err := avatar.Normalize(filename, data)
	if err != nil {
		return err
	}
	if err := s.users.SetAvatar(ctx, userID, png); err != nil {
		return NewServiceError("user", "set_avatar", "failed to store avatar", err)
	}
	return nil
}

// ClearAvatar implements UserService.ClearAvatar
func (s *userServiceImpl) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		return NewServiceError("user", "clear_avatar", "failed to clear avatar", err)
	}
	return nil
}

// GetAvatar implements UserService.GetAvatar
func (s *userServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	data, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAvatarNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "get_avatar", "failed to load avatar", err)
	}
	return data, nil
}

// notify emits an account event. Emission failures are logged only.
func (s *userServiceImpl) notify(ctx context.Context, eventType string, user *domain.User) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewAccountEvent(eventType, user)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit account event",
			slog.String("event_type", eventType),
			slog.String("error", redact.Error(err)))
	}
}
