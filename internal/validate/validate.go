// Package validate checks user input before it reaches the network.
package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"tasktrack/internal/service"
)

const (
	// MinPassword is the minimum password length in characters.
	MinPassword = 6

	// MinName is the minimum display name length in characters.
	MinName = 2
)

// Validation errors. Messages are shown to the user.
var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrShortPassword = errors.New("password must be at least 6 characters")
	ErrShortName     = errors.New("name must be at least 2 characters")
	ErrTitleRequired = errors.New("title required")
)

// v is shared by the CLI commands and the server handlers.
var v = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors maps a struct field to the error reported for it.
var fieldErrors = map[string]error{
	"Email":    ErrInvalidEmail,
	"Password": ErrShortPassword,
	"Name":     ErrShortName,
	"Title":    ErrTitleRequired,
}

// Form validates a tagged request struct such as service.Registration.
// Only the first failing field is reported, in declaration order.
func Form(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if mapped, ok := fieldErrors[verrs[0].StructField()]; ok {
		return mapped
	}
	return verrs[0]
}

// Email accepts a bare address like "ada@example.com".
// Display-name forms ("Ada <ada@example.com>") are rejected.
func Email(s string) error {
	if v.Var(s, "required,email") != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Password checks the minimum length.
func Password(s string) error {
	if v.Var(s, "required,min=6") != nil {
		return ErrShortPassword
	}
	return nil
}

// Name checks the minimum display name length.
func Name(s string) error {
	if v.Var(s, "required,min=2") != nil {
		return ErrShortName
	}
	return nil
}

// Title requires at least one non-space character.
func Title(s string) error {
	if v.Var(strings.TrimSpace(s), "required") != nil {
		return ErrTitleRequired
	}
	return nil
}

// Login validates a login form.
func Login(email, password string) error {
	return Form(service.Credentials{Email: email, Password: password})
}

// Registration validates a register form.
func Registration(email, password, name string) error {
	return Form(service.Registration{Email: email, Password: password, Name: name})
}
