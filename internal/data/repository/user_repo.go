package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finscope/internal/data/entity"
	"finscope/pkg/apperror"
	"finscope/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, tempPasswordHash *string, mustChange bool) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `
	u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role_id, r.name,
	u.is_active, u.is_verified, u.temp_password_hash, u.must_change_password,
	u.last_login_at, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.RoleID,
		&user.RoleName,
		&user.IsActive,
		&user.IsVerified,
		&user.TempPasswordHash,
		&user.MustChangePassword,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record. A duplicate email is reported as a conflict.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role_id,
		                   is_active, is_verified, temp_password_hash, must_change_password,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.RoleID,
		user.IsActive,
		user.IsVerified,
		user.TempPasswordHash,
		user.MustChangePassword,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return apperror.Conflict("Email already registered")
	}
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
	`

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1
	`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

// FindAll retrieves paginated list of users
func (ur *userRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		ORDER BY u.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := ur.db.Query(ctx, query, limit, offset)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users`

	var count int64
	if err := ur.db.QueryRow(ctx, query).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, role_id = $5,
		    is_active = $6, is_verified = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.RoleID,
		user.IsActive,
		user.IsVerified,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return apperror.Conflict("Email already registered")
	}
	if err != nil {
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}

	return nil
}

// UpdatePassword replaces the credential state in one statement.
func (ur *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, tempPasswordHash *string, mustChange bool) error {
	query := `
		UPDATE users
		SET password_hash = $2, temp_password_hash = $3, must_change_password = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query, id, passwordHash, tempPasswordHash, mustChange)
	if err != nil {
		ur.log.Error("Failed to update password",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("update password for %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}

	return nil
}

func (ur *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1`

	if _, err := ur.db.Exec(ctx, query, id, at); err != nil {
		ur.log.Error("Failed to update last login",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("update last login for %s: %w", id.String(), err)
	}

	return nil
}

func (ur *userRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`

	if _, err := ur.db.Exec(ctx, query, id); err != nil {
		ur.log.Error("Failed to mark user verified",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("mark user %s verified: %w", id.String(), err)
	}

	return nil
}

// Delete removes the user; codes, sessions, categories and transactions cascade.
func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := ur.db.Exec(ctx, query, id)
	if err != nil {
		ur.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}

	ur.log.Info("User deleted", zap.String("id", id.String()))
	return nil
}
