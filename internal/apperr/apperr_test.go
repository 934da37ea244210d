package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestIsUser(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"user", User("bad flag"), true},
		{"wrapped user", fmt.Errorf("run: %w", Userf("unknown scenario %q", "x")), true},
		{"cancelled", ErrCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUser(tt.err); got != tt.want {
				t.Fatalf("IsUser(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserf_UnwrapsWrappedCause(t *testing.T) {
	err := Userf("open input: %w", fs.ErrNotExist)
	if err.Error() != "open input: file does not exist" {
		t.Fatalf("message = %q", err.Error())
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected errors.Is to see the wrapped cause")
	}
	if errors.Unwrap(User("plain")) != nil {
		t.Fatalf("User should not wrap anything")
	}
}
