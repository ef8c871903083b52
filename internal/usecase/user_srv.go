package usecase

import (
	"context"
	"time"

	"finscope/internal/data/entity"
	"finscope/internal/data/repository"
	"finscope/internal/dto/request"
	"finscope/internal/dto/response"
	"finscope/pkg/apperror"
	"finscope/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)

	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetUser(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.CreatedUserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error)
	ResetPassword(ctx context.Context, id uuid.UUID) (*response.TempPasswordResponse, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
	GetRoles(ctx context.Context) ([]response.RoleResponse, error)
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  clock
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.UpdatedAt = us.now()

	if err := us.repo.User.Update(ctx, user); err != nil {
		return nil, us.wrapWrite("failed to update profile", err)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	req.Normalize()

	users, err := us.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users", zap.Error(err))
		return nil, apperror.Internal("failed to get users", err)
	}

	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, apperror.Internal("failed to count users", err)
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, response.UserToResponse(user))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) GetUser(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	return us.GetProfile(ctx, id)
}

func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.CreatedUserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	email := utils.NormalizeEmail(req.Email)
	existing, err := us.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	temp, hashed, err := newTempPassword()
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := us.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:              email,
		PasswordHash:       hashed,
		TempPasswordHash:   &hashed,
		MustChangePassword: true,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		RoleID:             entity.RoleID(req.RoleID),
		IsActive:           isActive,
	}

	if err := us.repo.User.Create(ctx, user); err != nil {
		return nil, us.wrapWrite("failed to create user", err)
	}

	if err := us.loadRoleName(ctx, user); err != nil {
		return nil, err
	}

	us.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.RoleID.String()))

	return &response.CreatedUserResponse{
		User:         response.UserToResponse(user),
		TempPassword: temp,
	}, nil
}

func (us *userService) UpdateUser(ctx context.Context, id uuid.UUID, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := us.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	wasActive := user.IsActive

	user.Email = utils.NormalizeEmail(req.Email)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.RoleID = entity.RoleID(req.RoleID)
	user.IsActive = *req.IsActive
	user.UpdatedAt = us.now()

	if err := us.repo.User.Update(ctx, user); err != nil {
		return nil, us.wrapWrite("failed to update user", err)
	}

	if err := us.loadRoleName(ctx, user); err != nil {
		return nil, err
	}

	if wasActive && !user.IsActive {
		if err := us.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
			return nil, apperror.Internal("failed to revoke sessions", err)
		}
		us.log.Info("User deactivated", zap.String("user_id", user.ID.String()))
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ResetPassword(ctx context.Context, id uuid.UUID) (*response.TempPasswordResponse, error) {
	user, err := us.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	temp, hashed, err := newTempPassword()
	if err != nil {
		return nil, err
	}

	// the old password keeps working until the user changes it
	if err := us.repo.User.UpdatePassword(ctx, user.ID, user.PasswordHash, &hashed, true); err != nil {
		return nil, apperror.Internal("failed to reset password", err)
	}

	us.log.Info("Temporary password issued", zap.String("user_id", user.ID.String()))

	return &response.TempPasswordResponse{TempPassword: temp}, nil
}

func (us *userService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperror.Validation("You cannot delete your own account")
	}

	if err := us.repo.User.Delete(ctx, id); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return err
		}
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", id.String()))
		return apperror.Internal("failed to delete user", err)
	}

	us.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (us *userService) GetRoles(ctx context.Context) ([]response.RoleResponse, error) {
	roles, err := us.repo.Role.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to get roles", err)
	}

	data := make([]response.RoleResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, response.RoleToResponse(role))
	}
	return data, nil
}

func (us *userService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", id.String()))
		return nil, apperror.Internal("failed to find user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (us *userService) wrapWrite(message string, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindConflict, apperror.KindNotFound:
		return err
	}
	us.log.Error("User write failed", zap.Error(err))
	return apperror.Internal(message, err)
}

// loadRoleName fills RoleName from the roles table so responses match the
// ones built from joined reads.
func (us *userService) loadRoleName(ctx context.Context, user *entity.User) error {
	role, err := us.repo.Role.FindByID(ctx, user.RoleID)
	if err != nil {
		return apperror.Internal("failed to load role", err)
	}
	if role == nil {
		user.RoleName = ""
		return nil
	}
	user.RoleName = role.Name
	return nil
}

func newTempPassword() (plain, hashed string, err error) {
	plain, err = utils.GenerateTempPassword()
	if err != nil {
		return "", "", apperror.Internal("failed to generate password", err)
	}
	hashed, err = utils.HashPassword(plain)
	if err != nil {
		return "", "", apperror.Internal("failed to hash password", err)
	}
	return plain, hashed, nil
}
