package domain

import (
	"errors"
	"testing"
)

func TestParseRole_Valid(t *testing.T) {
	for _, want := range Roles() {
		got, err := ParseRole(string(want))
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", want, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %q", want, got)
		}
	}
}

func TestParseRole_Invalid(t *testing.T) {
	for _, in := range []string{"", "root", "Admin", " user", "uploaders"} {
		if _, err := ParseRole(in); !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("ParseRole(%q): expected ErrInvalidRole, got %v", in, err)
		}
	}
}

func TestRoleList(t *testing.T) {
	if got := RoleList(); got != "user, uploader, admin" {
		t.Fatalf("unexpected role list: %q", got)
	}
}

func TestNormalizeFeedURL(t *testing.T) {
	cases := map[string]string{
		`" 'https://example.com/feed.xml' "`: "https://example.com/feed.xml",
		"'https://example.com/feed.xml'":     "https://example.com/feed.xml",
		"https://example.com/feed.xml":       "https://example.com/feed.xml",
		" https://example.com/a b.xml ":      "https://example.com/ab.xml",
	}
	for in, want := range cases {
		if got := NormalizeFeedURL(in); got != want {
			t.Fatalf("NormalizeFeedURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPersistenceError_Unwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence("insert account", cause)

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %T", err)
	}
	if pe.Op != "insert account" || !errors.Is(err, cause) {
		t.Fatalf("unexpected error: %v", err)
	}
	if Persistence("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
