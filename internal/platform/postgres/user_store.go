package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// userColumns selects a user row together with its live token set.
const userColumns = `
	u.id, u.name, u.email, u.hashed_password, u.age, u.created_at, u.updated_at,
	ARRAY(SELECT t.token FROM user_tokens t WHERE t.user_id = u.id ORDER BY t.created_at, t.token) AS tokens`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db       store.DBTX
	logger   *slog.Logger
	typeMap  *pgtype.Map
	timeFunc func() time.Time
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:       db,
		logger:   logger.With(slog.String("component", "user_store")),
		typeMap:  pgtype.NewMap(),
		timeFunc: func() time.Time { return time.Now().UTC() },
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:       tx,
		logger:   s.logger,
		typeMap:  s.typeMap,
		timeFunc: s.timeFunc,
	}
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: user has no hashed password", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO users (id, name, email, hashed_password, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.Age,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "insert failed", mapped)
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return s.getOne(ctx, "get_by_id", query, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`
	return s.getOne(ctx, "get_by_email", query, domain.NormalizeEmail(email))
}

// GetByIDAndToken implements store.UserStore.GetByIDAndToken.
func (s *PostgresUserStore) GetByIDAndToken(
	ctx context.Context,
	id uuid.UUID,
	token string,
) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u
		WHERE u.id = $1
		AND EXISTS (SELECT 1 FROM user_tokens t WHERE t.user_id = u.id AND t.token = $2)`
	return s.getOne(ctx, "get_by_token", query, id, token)
}

func (s *PostgresUserStore) getOne(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user domain.User
	var tokens []string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.Age,
		&user.CreatedAt,
		&user.UpdatedAt,
		s.typeMap.SQLScanner(&tokens),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("operation", operation))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("operation", operation),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("user", operation, "query failed", MapError(err))
	}

	user.Tokens = tokens
	return &user, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET name = $1, email = $2, hashed_password = $3, age = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.Age,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "update", "update failed", mapped)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", id.String()))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}
	log.Debug("user deleted", slog.String("user_id", id.String()))
	return nil
}

// AddToken implements store.UserStore.AddToken.
func (s *PostgresUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `INSERT INTO user_tokens (token, user_id, created_at) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, token, userID, s.timeFunc()); err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		log.Error("failed to add session token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("token", "create", "insert failed", MapError(err))
	}
	return nil
}

// RemoveToken implements store.UserStore.RemoveToken.
func (s *PostgresUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		log.Error("failed to remove session token",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("token", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTokenNotFound)
}

// ClearTokens implements store.UserStore.ClearTokens.
func (s *PostgresUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to clear session tokens",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("token", "delete_all", "delete failed", MapError(err))
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Debug("session tokens cleared",
			slog.String("user_id", userID.String()),
			slog.Int64("count", n))
	}
	return nil
}

// SetAvatar implements store.UserStore.SetAvatar.
func (s *PostgresUserStore) SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var value any
	if len(avatar) > 0 {
		value = avatar
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3`,
		value, s.timeFunc(), userID)
	if err != nil {
		log.Error("failed to store avatar",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("avatar", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// GetAvatar implements store.UserStore.GetAvatar.
func (s *PostgresUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var avatar []byte
	err := s.db.QueryRowContext(ctx, `SELECT avatar FROM users WHERE id = $1`, userID).Scan(&avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAvatarNotFound
		}
		log.Error("failed to load avatar",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("avatar", "get", "query failed", MapError(err))
	}
	if len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return avatar, nil
}
