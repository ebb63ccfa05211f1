package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/notesd/internal/apperr"
)

func TestValidateName(t *testing.T) {
	valid := []string{
		"todo",
		"shopping list",
		"a..b",
		"report-2025_01",
		"нотатка",
		"x.md",
		strings.Repeat("n", maxKeyBytes-len(DefaultSuffix)),
	}
	for _, name := range valid {
		if err := ValidateName(name, DefaultSuffix); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		".",
		"..",
		".hidden",
		"../up",
		"a/b",
		`a\b`,
		"tab\there",
		"line\nbreak",
		"bad\xffutf8",
		strings.Repeat("n", maxKeyBytes-len(DefaultSuffix)+1),
	}
	for _, name := range invalid {
		err := ValidateName(name, DefaultSuffix)
		if !errors.Is(err, apperr.ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestKeyDerivationReversible(t *testing.T) {
	s := tempStore(t)
	for _, name := range []string{"a", "x.md", "with space"} {
		p, err := s.keyPath(name)
		if err != nil {
			t.Fatalf("keyPath(%q): %v", name, err)
		}
		back, ok := s.NameFromKey(p[len(s.Root())+1:])
		if !ok || back != name {
			t.Errorf("NameFromKey(keyPath(%q)) = %q, %v", name, back, ok)
		}
	}
	if _, ok := s.NameFromKey("plain.md"); ok {
		t.Error("key without suffix should not map to a note")
	}
}
