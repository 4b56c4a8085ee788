package models

import (
	"net/mail"
	"strings"

	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/platform/validation"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Purpose  string `json:"purpose"`
}

// Normalize trims everything except the password.
func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Purpose = strings.TrimSpace(r.Purpose)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	for _, f := range []struct{ name, value string }{
		{"username", r.Username},
		{"password", r.Password},
		{"email", r.Email},
		{"purpose", r.Purpose},
	} {
		if err := validation.Required(f.name, f.value); err != nil {
			return err
		}
	}
	if err := validation.CheckStringLength("username", r.Username, validation.MaxUsernameLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("password", r.Password, validation.MaxPasswordLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("email", r.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("phone", r.Phone, validation.MaxPhoneLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("purpose", r.Purpose, validation.MaxPurposeLength); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Required("username", r.Username); err != nil {
		return err
	}
	if err := validation.Required("password", r.Password); err != nil {
		return err
	}
	return validation.CheckStringLength("password", r.Password, validation.MaxPasswordLength)
}
