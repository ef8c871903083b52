package entity

import "time"

type User struct {
	Base
	Email              string     `db:"email"`
	PasswordHash       string     `db:"password_hash"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	RoleID             RoleID     `db:"role_id"`
	RoleName           string     `db:"role_name"`
	IsActive           bool       `db:"is_active"`
	IsVerified         bool       `db:"is_verified"`
	TempPasswordHash   *string    `db:"temp_password_hash"`
	MustChangePassword bool       `db:"must_change_password"`
	LastLoginAt        *time.Time `db:"last_login_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
