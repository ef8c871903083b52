package usecase

import (
	"context"
	"time"

	"finscope/internal/data/entity"
	"finscope/internal/data/repository"
	"finscope/internal/dto/request"
	"finscope/internal/dto/response"
	"finscope/pkg/apperror"
	"finscope/pkg/mailer"
	"finscope/pkg/metrics"
	"finscope/pkg/ratelimit"
	"finscope/pkg/token"
	"finscope/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invalidCodeMessage = "Invalid, expired or already used code"

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	Verify(ctx context.Context, req *request.VerifyRequest, meta SessionMeta) (*response.VerifyResponse, error)
	ResendCode(ctx context.Context, req *request.ResendCodeRequest) error
	ChangePassword(ctx context.Context, req *request.ChangePasswordRequest) error
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// SessionMeta is recorded on the session row for auditing.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

type authService struct {
	repo    *repository.Repository
	tokens  *token.Manager
	sender  mailer.Sender
	limiter ratelimit.Limiter
	config  *utils.Config
	log     *zap.Logger
	now     clock
}

func NewAuthService(
	repo *repository.Repository,
	tokens *token.Manager,
	sender mailer.Sender,
	limiter ratelimit.Limiter,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:    repo,
		tokens:  tokens,
		sender:  sender,
		limiter: limiter,
		config:  config,
		log:     log,
		now:     time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	email := utils.NormalizeEmail(req.Email)

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err))
		return nil, apperror.Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		RoleID:       entity.RoleUser,
		IsActive:     true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return nil, err
		}
		s.log.Error("Failed to create user", zap.Error(err))
		return nil, apperror.Internal("failed to create account", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.String()))

	return &response.RegisterResponse{UserID: user.ID.String()}, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(apperror.KindOf(err).String()).Inc()
		return nil, err
	}

	if err := s.repo.User.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.log.Warn("Failed to update last login", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	if err := s.issueCode(ctx, user); err != nil {
		metrics.LoginsTotal.WithLabelValues(apperror.KindOf(err).String()).Inc()
		return nil, err
	}

	// a password-checked login starts a fresh attempt window for the new code;
	// resend does not, since it needs no credentials
	if err := s.limiter.Reset(ctx, user.Email); err != nil {
		s.log.Warn("Failed to reset rate limiter", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	metrics.LoginsTotal.WithLabelValues("code_sent").Inc()
	s.log.Info("Login code issued", zap.String("user_id", user.ID.String()))

	return &response.LoginResponse{
		MaskedEmail: utils.MaskEmail(user.Email),
		User:        response.LoginUser{MustChangePassword: user.MustChangePassword},
	}, nil
}

func (s *authService) Verify(ctx context.Context, req *request.VerifyRequest, meta SessionMeta) (*response.VerifyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	email := utils.NormalizeEmail(req.Email)

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		// fail open when redis is unreachable
		s.log.Warn("Rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		metrics.OTPVerificationsTotal.WithLabelValues("rate_limited").Inc()
		return nil, apperror.RateLimited("Too many verification attempts, request a new code")
	}

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal("failed to find user", err)
	}
	if user == nil || !user.IsActive {
		metrics.OTPVerificationsTotal.WithLabelValues("rejected").Inc()
		return nil, apperror.Authentication(invalidCodeMessage)
	}

	now := s.now()
	code, err := s.repo.OTP.FindValid(ctx, user.ID, req.Code, now)
	if err != nil {
		return nil, apperror.Internal("failed to find code", err)
	}
	if code == nil || code.Code != req.Code || code.Expired(now) {
		metrics.OTPVerificationsTotal.WithLabelValues("rejected").Inc()
		return nil, apperror.Authentication(invalidCodeMessage)
	}

	consumed, err := s.repo.OTP.MarkAsUsed(ctx, code.ID)
	if err != nil {
		return nil, apperror.Internal("failed to consume code", err)
	}
	if !consumed {
		metrics.OTPVerificationsTotal.WithLabelValues("rejected").Inc()
		return nil, apperror.Authentication(invalidCodeMessage)
	}

	if !user.IsVerified {
		if err := s.repo.User.MarkVerified(ctx, user.ID); err != nil {
			return nil, apperror.Internal("failed to mark user verified", err)
		}
		user.IsVerified = true
	}

	signed, claims, err := s.tokens.Issue(token.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return nil, apperror.Internal("failed to sign token", err)
	}

	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, apperror.Internal("failed to read token id", err)
	}

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: sessionID, CreatedAt: now},
		UserID:     user.ID,
		UserAgent:  optional(meta.UserAgent),
		IPAddress:  optional(meta.IPAddress),
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, apperror.Internal("failed to create session", err)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn("Failed to reset rate limiter", zap.Error(err))
	}

	metrics.OTPVerificationsTotal.WithLabelValues("accepted").Inc()
	s.log.Info("User verified code", zap.String("user_id", user.ID.String()))

	return &response.VerifyResponse{
		Token:     signed,
		ExpiresAt: session.ExpiresAt,
		User:      response.UserToResponse(user),
	}, nil
}

// ResendCode only re-issues for accounts holding an outstanding code, so the
// endpoint cannot be used to send mail to arbitrary registered addresses.
func (s *authService) ResendCode(ctx context.Context, req *request.ResendCodeRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		return apperror.Internal("failed to find user", err)
	}
	if user == nil || !user.IsActive {
		return nil
	}

	pending, err := s.repo.OTP.HasPending(ctx, user.ID, s.now())
	if err != nil {
		return apperror.Internal("failed to check pending code", err)
	}
	if !pending {
		s.log.Info("Resend ignored, no pending code", zap.String("user_id", user.ID.String()))
		return nil
	}

	return s.issueCode(ctx, user)
}

func (s *authService) ChangePassword(ctx context.Context, req *request.ChangePasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := s.authenticate(ctx, req.Email, req.Current())
	if err != nil {
		return err
	}

	if utils.CheckPasswordHash(req.NewPassword, user.PasswordHash) {
		return apperror.Validation("New password must be different from the current password")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}

	if err := s.repo.User.UpdatePassword(ctx, user.ID, hashed, nil, false); err != nil {
		return apperror.Internal("failed to update password", err)
	}

	s.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.repo.Session.Revoke(ctx, sessionID); err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err), zap.String("session_id", sessionID.String()))
		return apperror.Internal("failed to logout", err)
	}

	s.log.Info("User logged out", zap.String("session_id", sessionID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

// authenticate checks the primary hash first and falls back to the temporary
// hash. It never mutates the user.
func (s *authService) authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.repo.User.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err))
		return nil, apperror.Internal("failed to find user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	matched := utils.CheckPasswordHash(password, user.PasswordHash)
	if !matched && user.TempPasswordHash != nil {
		matched = utils.CheckPasswordHash(password, *user.TempPasswordHash)
	}
	if !matched {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, apperror.Authentication("Invalid credentials")
	}

	if !user.IsActive {
		return nil, apperror.Authorization("Account is deactivated")
	}

	return user, nil
}

// issueCode replaces any outstanding code for the user and emails the new one.
func (s *authService) issueCode(ctx context.Context, user *entity.User) error {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return apperror.Internal("failed to generate code", err)
	}

	ttl := time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute
	now := s.now()
	code := &entity.VerificationCode{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     user.ID,
		Code:       otp,
		ExpiresAt:  now.Add(ttl),
	}

	if err := s.repo.OTP.Replace(ctx, code); err != nil {
		s.log.Error("Failed to store code", zap.Error(err), zap.String("user_id", user.ID.String()))
		return apperror.Internal("failed to store code", err)
	}
	metrics.OTPIssuedTotal.Inc()

	err = s.sender.SendVerificationCode(ctx, mailer.CodeMessage{
		To:        user.Email,
		Name:      user.FirstName,
		Code:      otp,
		ExpiresIn: ttl,
	})
	if err != nil {
		s.log.Error("Failed to send code", zap.Error(err), zap.String("user_id", user.ID.String()))
		return apperror.Upstream("Could not send the verification code, try again", err)
	}

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
