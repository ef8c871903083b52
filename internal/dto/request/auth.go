package request

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest accepts the current password under either name;
// accounts created by an admin send it as tempPassword.
type ChangePasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"required_without=TempPassword"`
	TempPassword    string `json:"tempPassword" validate:"required_without=CurrentPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

func (r ChangePasswordRequest) Current() string {
	if r.CurrentPassword != "" {
		return r.CurrentPassword
	}
	return r.TempPassword
}
