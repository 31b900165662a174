package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("user@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, email := range []string{"", "user", "user@", "@example.com", "a b@example.com"} {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePassword("short"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestRequireStringsWrapsSentinel(t *testing.T) {
	err := RequireStrings(map[string]string{"first_name": "  "})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if !strings.Contains(err.Error(), "first_name") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestRequireStringsAllPresent(t *testing.T) {
	err := RequireStrings(map[string]string{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
