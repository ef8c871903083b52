package request

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	RoleID    int16  `json:"roleId" validate:"required,oneof=1 2"`
	IsActive  *bool  `json:"isActive"`
}

type UpdateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	RoleID    int16  `json:"roleId" validate:"required,oneof=1 2"`
	IsActive  *bool  `json:"isActive" validate:"required"`
}
