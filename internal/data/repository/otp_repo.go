package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finscope/internal/data/entity"
	"finscope/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OTPRepository stores verification codes. Codes are looked up by user, never by value alone.
type OTPRepository interface {
	Replace(ctx context.Context, code *entity.VerificationCode) error
	FindValid(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*entity.VerificationCode, error)
	MarkAsUsed(ctx context.Context, id uuid.UUID) (bool, error)
	HasPending(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

// Replace drops every code of the user and stores the new one in a single transaction.
func (r *otpRepository) Replace(ctx context.Context, code *entity.VerificationCode) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM verification_codes WHERE user_id = $1`, code.UserID); err != nil {
			return fmt.Errorf("delete previous codes: %w", err)
		}

		query := `
			INSERT INTO verification_codes (id, user_id, code, expires_at, is_used, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.Exec(ctx, query,
			code.ID,
			code.UserID,
			code.Code,
			code.ExpiresAt,
			code.IsUsed,
			code.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert code: %w", err)
		}
		return nil
	})

	if err != nil {
		r.log.Error("Failed to store verification code",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
		)
		return fmt.Errorf("replace verification code for %s: %w", code.UserID.String(), err)
	}

	return nil
}

func (r *otpRepository) FindValid(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*entity.VerificationCode, error) {
	query := `
		SELECT id, user_id, code, expires_at, is_used, created_at
		FROM verification_codes
		WHERE user_id = $1
		  AND code = $2
		  AND is_used = FALSE
		  AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	var vc entity.VerificationCode
	err := r.db.QueryRow(ctx, query, userID, code, now).Scan(
		&vc.ID,
		&vc.UserID,
		&vc.Code,
		&vc.ExpiresAt,
		&vc.IsUsed,
		&vc.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find valid code for %s: %w", userID.String(), err)
	}

	return &vc, nil
}

// MarkAsUsed consumes the code. It reports false when another request got there first.
func (r *otpRepository) MarkAsUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE verification_codes
		SET is_used = TRUE
		WHERE id = $1 AND is_used = FALSE
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark code as used",
			zap.Error(err),
			zap.String("code_id", id.String()),
		)
		return false, fmt.Errorf("mark code %s as used: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *otpRepository) HasPending(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM verification_codes
			WHERE user_id = $1 AND is_used = FALSE AND expires_at > $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, now).Scan(&exists); err != nil {
		r.log.Error("Failed to check pending code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return false, fmt.Errorf("check pending code for %s: %w", userID.String(), err)
	}

	return exists, nil
}

func (r *otpRepository) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM verification_codes WHERE expires_at <= $1 OR is_used = TRUE`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to clean verification codes", zap.Error(err))
		return 0, fmt.Errorf("clean verification codes: %w", err)
	}

	return result.RowsAffected(), nil
}
