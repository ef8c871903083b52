package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"finscope/internal/data/repository"
	"finscope/pkg/token"
	"finscope/pkg/utils"

	"go.uber.org/zap"
)

// Authenticate validates the bearer token, its session row and the user behind it.
// Every failure is a 401 before the handler runs.
func Authenticate(
	tokens *token.Manager,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Missing or malformed authorization header. Use: Bearer <token>")
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					utils.ResponseUnauthorized(w, "Token expired")
					return
				}
				logger.Warn("Rejected token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			sessionID, err := claims.SessionID()
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			session, err := sessionRepo.FindValidSession(r.Context(), sessionID, time.Now())
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err), zap.String("session_id", sessionID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if session == nil {
				utils.ResponseUnauthorized(w, "Session revoked or expired")
				return
			}
			if session.UserID.String() != claims.UserID {
				logger.Warn("Token subject does not own session",
					zap.String("session_id", sessionID.String()),
					zap.String("claimed_user_id", claims.UserID),
				)
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			user, err := userRepo.FindByID(r.Context(), session.UserID)
			if err != nil {
				logger.Error("Failed to load user", zap.Error(err), zap.String("user_id", session.UserID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil || !user.IsActive {
				logger.Warn("Token for missing or inactive user", zap.String("user_id", session.UserID.String()))
				utils.ResponseUnauthorized(w, "User not found or inactive")
				return
			}

			ctx := utils.SetAuthUser(r.Context(), utils.NewAuthUser(user))
			ctx = utils.SetSessionContext(ctx, sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerification rejects users that never confirmed an emailed code.
func RequireVerification(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := utils.GetAuthUser(r.Context())
		if !ok {
			utils.ResponseUnauthorized(w, "Authentication required")
			return
		}
		if !user.IsVerified {
			utils.ResponseForbidden(w, "Email verification required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := utils.GetAuthUser(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !user.Role.IsAdmin() {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", user.ID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
