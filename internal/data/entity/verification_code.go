package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is the emailed login code. One outstanding row per user.
type VerificationCode struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	IsUsed    bool      `db:"is_used"`
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
