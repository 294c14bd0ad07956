package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the password")
	}
	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := CheckPassword(hash, "secret2"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)

	token, err := iss.Issue("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "user-1" {
		t.Errorf("expected user-1, got %q", id)
	}
}

func TestVerify_Expired(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return start }

	token, err := iss.Issue("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	iss.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, _ := NewIssuer("secret-a", time.Hour).Issue("user-1")

	if _, err := NewIssuer("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}
