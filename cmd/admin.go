package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"finscope/internal/data/entity"
	"finscope/internal/data/repository"
	"finscope/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// CreateAdmin creates a verified administrator. The password is read from the
// terminal without echo.
func CreateAdmin(ctx context.Context, users repository.UserRepository, args []string, w io.Writer) error {
	if len(args) < 2 {
		return errors.New("usage: finscope create-admin <email> <firstName> [lastName]")
	}

	email := utils.NormalizeEmail(args[0])
	if errs := utils.ValidateStruct(struct {
		Email string `validate:"required,email"`
	}{email}); len(errs) > 0 {
		return fmt.Errorf("invalid email: %s", utils.FormatValidationErrors(errs))
	}

	lastName := ""
	if len(args) > 2 {
		lastName = strings.Join(args[2:], " ")
	}

	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("user %s already exists", email)
	}

	password, err := promptPassword(w)
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	admin := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email:        email,
		PasswordHash: hashed,
		FirstName:    args[1],
		LastName:     lastName,
		RoleID:       entity.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(w, "Administrator %s created (%s)\n", email, admin.ID)
	return nil
}

func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return string(first), nil
}
