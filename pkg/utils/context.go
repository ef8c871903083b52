package utils

import (
	"context"

	"finscope/internal/data/entity"
	"finscope/pkg/apperror"

	"github.com/google/uuid"
)

type contextKey string

const (
	authUserKey contextKey = "auth_user"
	sessionKey  contextKey = "session_id"
)

// AuthUser is the projection of the caller attached by the auth middleware.
type AuthUser struct {
	ID         uuid.UUID
	Email      string
	FirstName  string
	LastName   string
	IsVerified bool
	Role       entity.RoleID
}

func NewAuthUser(u *entity.User) AuthUser {
	return AuthUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
		Role:       u.RoleID,
	}
}

func SetAuthUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey, user)
}

func GetAuthUser(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(authUserKey).(AuthUser)
	return user, ok
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetAuthUser(ctx)
	if !ok || user.ID == uuid.Nil {
		return uuid.Nil, false
	}
	return user.ID, true
}

// SetSessionContext stores the jti of the token that authenticated the request.
func SetSessionContext(ctx context.Context, sessionID uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

func GetSessionFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey).(uuid.UUID)
	return id, ok
}

// CheckOwnership rejects callers that do not own the resource.
func CheckOwnership(ctx context.Context, ownerID uuid.UUID) error {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return apperror.Authentication("Authentication required")
	}
	if userID != ownerID {
		return apperror.Authorization("You do not have access to this resource")
	}
	return nil
}
