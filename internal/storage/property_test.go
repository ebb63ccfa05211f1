package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/starford/notesd/internal/apperr"
)

// nameGenerator produces names that are valid storage keys.
func nameGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9_-][A-Za-z0-9 _.-]{0,40}`)
}

// textGenerator produces note content, including the empty string.
func textGenerator() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.Just(""),
		rapid.String(),
		rapid.StringMatching(`[A-Za-z0-9 .,!?\n]{1,200}`),
	)
}

func TestCreateThenRead_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		name := nameGenerator().Draw(rt, "name")
		text := textGenerator().Draw(rt, "text")

		if err := s.Create(name, text); err != nil {
			rt.Fatalf("Create(%q): %v", name, err)
		}
		got, err := s.Read(name)
		if err != nil {
			rt.Fatalf("Read(%q): %v", name, err)
		}
		if got != text {
			rt.Fatalf("Read = %q, want %q", got, text)
		}
	})
}

func TestUpdateReplaces_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		name := nameGenerator().Draw(rt, "name")
		t1 := textGenerator().Draw(rt, "t1")
		t2 := textGenerator().Draw(rt, "t2")

		if err := s.Create(name, t1); err != nil {
			rt.Fatalf("Create: %v", err)
		}
		if err := s.Update(name, t2); err != nil {
			rt.Fatalf("Update: %v", err)
		}
		got, _ := s.Read(name)
		if got != t2 {
			rt.Fatalf("Read after update = %q, want %q", got, t2)
		}
	})
}

func TestDeleteThenNotFound_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		name := nameGenerator().Draw(rt, "name")

		_ = s.Create(name, textGenerator().Draw(rt, "text"))
		if err := s.Delete(name); err != nil {
			rt.Fatalf("Delete: %v", err)
		}
		if _, err := s.Read(name); !errors.Is(err, apperr.ErrNotFound) {
			rt.Fatalf("Read after delete err = %v, want ErrNotFound", err)
		}
	})
}

func TestCreateExistingIsNoop_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		name := nameGenerator().Draw(rt, "name")
		t1 := textGenerator().Draw(rt, "t1")
		t2 := textGenerator().Draw(rt, "t2")

		_ = s.Create(name, t1)
		if err := s.Create(name, t2); !errors.Is(err, apperr.ErrAlreadyExists) {
			rt.Fatalf("second Create err = %v, want ErrAlreadyExists", err)
		}
		got, _ := s.Read(name)
		if got != t1 {
			rt.Fatalf("content = %q, want unchanged %q", got, t1)
		}
	})
}

func TestAbsentHasNoSideEffect_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		name := nameGenerator().Draw(rt, "name")
		op := rapid.SampledFrom([]string{"read", "update", "delete"}).Draw(rt, "op")

		var err error
		switch op {
		case "read":
			_, err = s.Read(name)
		case "update":
			err = s.Update(name, "x")
		case "delete":
			err = s.Delete(name)
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			rt.Fatalf("%s err = %v, want ErrNotFound", op, err)
		}
		if ok, _ := s.Exists(name); ok {
			rt.Fatalf("%s created %q as a side effect", op, name)
		}
	})
}

func TestTraversalRejected_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		prefix := rapid.SampledFrom([]string{"../", "../../", "/", "sub/", `..\`}).Draw(rt, "prefix")
		name := prefix + nameGenerator().Draw(rt, "name")

		if err := s.Create(name, "x"); !errors.Is(err, apperr.ErrInvalidName) {
			rt.Fatalf("Create(%q) err = %v, want ErrInvalidName", name, err)
		}
		entries, _ := os.ReadDir(filepath.Dir(s.Root()))
		if len(entries) != 1 {
			rt.Fatalf("Create(%q) wrote outside root: %v", name, entries)
		}
	})
}

func TestListMatchesCreated_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := tempStore(t)
		want := rapid.MapOf(nameGenerator(), textGenerator()).Draw(rt, "notes")
		for name, text := range want {
			if err := s.Create(name, text); err != nil {
				rt.Fatalf("Create(%q): %v", name, err)
			}
		}
		notes, err := s.List()
		if err != nil {
			rt.Fatalf("List: %v", err)
		}
		if len(notes) != len(want) {
			rt.Fatalf("List len = %d, want %d", len(notes), len(want))
		}
		for _, n := range notes {
			if text, ok := want[n.Name]; !ok || text != n.Text {
				rt.Fatalf("unexpected note %+v", n)
			}
		}
	})
}
