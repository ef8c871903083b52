package response

import (
	"time"

	"finscope/internal/data/entity"
)

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type LoginUser struct {
	MustChangePassword bool `json:"mustChangePassword"`
}

type LoginResponse struct {
	MaskedEmail string    `json:"maskedEmail"`
	User        LoginUser `json:"user"`
}

type VerifyResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	RoleID             int16      `json:"roleId"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"isActive"`
	IsVerified         bool       `json:"isVerified"`
	MustChangePassword bool       `json:"mustChangePassword"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type CreatedUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"tempPassword"`
}

type TempPasswordResponse struct {
	TempPassword string `json:"tempPassword"`
}

type RoleResponse struct {
	ID          int16  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func UserToResponse(user *entity.User) UserResponse {
	role := user.RoleName
	if role == "" {
		role = user.RoleID.String()
	}

	return UserResponse{
		ID:                 user.ID.String(),
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		RoleID:             int16(user.RoleID),
		Role:               role,
		IsActive:           user.IsActive,
		IsVerified:         user.IsVerified,
		MustChangePassword: user.MustChangePassword,
		LastLoginAt:        user.LastLoginAt,
		CreatedAt:          user.CreatedAt,
	}
}

func RoleToResponse(role *entity.Role) RoleResponse {
	return RoleResponse{
		ID:          int16(role.ID),
		Name:        role.Name,
		Description: role.Description,
	}
}
