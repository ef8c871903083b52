package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session tracks an issued token by its jti so it can be revoked before expiry.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	UserAgent *string    `db:"user_agent"`
	IPAddress *string    `db:"ip_address"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
