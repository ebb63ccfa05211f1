package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesd/internal/apperr"
)

// maxKeyBytes is the common file name limit on Linux, macOS and Windows.
const maxKeyBytes = 255

var (
	errSeparator = errors.New("must not contain path separators")
	errControl   = errors.New("must not contain control characters")
	errHidden    = errors.New("must not start with a dot")
	errUTF8      = errors.New("must be valid UTF-8")
)

// plainName rejects anything that could change meaning once joined to a path.
func plainName(value interface{}) error {
	s, _ := value.(string)
	if !utf8.ValidString(s) {
		return errUTF8
	}
	if strings.HasPrefix(s, ".") {
		return errHidden
	}
	for _, r := range s {
		switch {
		case r == '/' || r == '\\':
			return errSeparator
		case unicode.IsControl(r):
			return errControl
		}
	}
	return nil
}

func maxBytes(n int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len(s) > n {
			return fmt.Errorf("must be at most %d bytes", n)
		}
		return nil
	}
}

// ValidateName checks that name can be used as a storage key with the given
// suffix. The returned error wraps apperr.ErrInvalidName.
func ValidateName(name, suffix string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.By(maxBytes(maxKeyBytes-len(suffix))),
		validation.By(plainName),
	)
	if err != nil {
		return fmt.Errorf("%w: %q %v", apperr.ErrInvalidName, name, err)
	}
	return nil
}

// keyPath derives the absolute path of the record for name and verifies it
// is a direct child of the root.
func (f *FS) keyPath(name string) (string, error) {
	if err := ValidateName(name, f.suffix); err != nil {
		return "", err
	}
	p := filepath.Join(f.root, name+f.suffix)
	if filepath.Dir(p) != f.root {
		return "", fmt.Errorf("%w: %q escapes storage root", apperr.ErrInvalidName, name)
	}
	return p, nil
}

// NameFromKey reverses key derivation for a file name inside the root. ok is
// false for entries that are not note records.
func (f *FS) NameFromKey(key string) (string, bool) {
	if !strings.HasSuffix(key, f.suffix) {
		return "", false
	}
	name := strings.TrimSuffix(key, f.suffix)
	if ValidateName(name, f.suffix) != nil {
		return "", false
	}
	return name, true
}
