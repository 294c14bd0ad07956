package validate

import (
	"errors"
	"testing"

	"tasktrack/internal/service"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"ada@example.com", true},
		{"a.b+tag@sub.example.org", true},
		{"", false},
		{"ada", false},
		{"ada@", false},
		{"@example.com", false},
		{"ada@localhost", false},
		{"Ada <ada@example.com>", false},
		{" ada@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := Email(tt.in)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("expected ErrInvalidEmail, got %v", err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	if err := Password("12345"); !errors.Is(err, ErrShortPassword) {
		t.Errorf("expected ErrShortPassword, got %v", err)
	}
	if err := Password("123456"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestName(t *testing.T) {
	if err := Name("A"); !errors.Is(err, ErrShortName) {
		t.Errorf("expected ErrShortName, got %v", err)
	}
	if err := Name("Al"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := Name("Zoë"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestTitle(t *testing.T) {
	for _, s := range []string{"", " ", "\t\n"} {
		if err := Title(s); !errors.Is(err, ErrTitleRequired) {
			t.Errorf("Title(%q): expected ErrTitleRequired, got %v", s, err)
		}
	}
	if err := Title(" Buy milk "); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestRegistration_FirstErrorWins(t *testing.T) {
	if err := Registration("bad", "1", "A"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected email error first, got %v", err)
	}
	if err := Registration("ada@example.com", "1", "A"); !errors.Is(err, ErrShortPassword) {
		t.Errorf("expected password error, got %v", err)
	}
	if err := Registration("ada@example.com", "secret1", "A"); !errors.Is(err, ErrShortName) {
		t.Errorf("expected name error, got %v", err)
	}
	if err := Registration("ada@example.com", "secret1", "Ada"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestForm(t *testing.T) {
	tests := []struct {
		name string
		form any
		want error
	}{
		{"credentials ok", service.Credentials{Email: "ada@example.com", Password: "secret1"}, nil},
		{"credentials bad email", service.Credentials{Email: "ada@", Password: "secret1"}, ErrInvalidEmail},
		{"credentials short password", service.Credentials{Email: "ada@example.com", Password: "12345"}, ErrShortPassword},
		{"registration ok", service.Registration{Email: "ada@example.com", Password: "secret1", Name: "Ada"}, nil},
		{"registration empty", service.Registration{}, ErrInvalidEmail},
		{"registration short name", service.Registration{Email: "ada@example.com", Password: "secret1", Name: "A"}, ErrShortName},
		{"registration multibyte name", service.Registration{Email: "ada@example.com", Password: "secret1", Name: "Zö"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Form(tt.form)
			if tt.want == nil && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestForm_NotAStruct(t *testing.T) {
	if err := Form("ada@example.com"); err == nil {
		t.Error("expected an error for a non-struct form")
	}
}
