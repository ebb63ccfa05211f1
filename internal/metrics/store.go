package metrics

import (
	"time"

	"github.com/starford/notesd/internal/models"
	"github.com/starford/notesd/internal/storage"
)

type instrumentedStore struct {
	next storage.Store
	m    *Metrics
}

// InstrumentStore wraps store so every operation is counted and timed.
func InstrumentStore(store storage.Store, m *Metrics) storage.Store {
	return &instrumentedStore{next: store, m: m}
}

func (s *instrumentedStore) Init() error {
	start := time.Now()
	err := s.next.Init()
	s.m.observe("init", start, err)
	return err
}

func (s *instrumentedStore) Exists(name string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Exists(name)
	s.m.observe("exists", start, err)
	return ok, err
}

func (s *instrumentedStore) Read(name string) (string, error) {
	start := time.Now()
	text, err := s.next.Read(name)
	s.m.observe("read", start, err)
	return text, err
}

func (s *instrumentedStore) Create(name, text string) error {
	start := time.Now()
	err := s.next.Create(name, text)
	s.m.observe("create", start, err)
	return err
}

func (s *instrumentedStore) Update(name, text string) error {
	start := time.Now()
	err := s.next.Update(name, text)
	s.m.observe("update", start, err)
	return err
}

func (s *instrumentedStore) Delete(name string) error {
	start := time.Now()
	err := s.next.Delete(name)
	s.m.observe("delete", start, err)
	return err
}

func (s *instrumentedStore) List() ([]models.Note, error) {
	start := time.Now()
	notes, err := s.next.List()
	s.m.observe("list", start, err)
	if err == nil {
		s.m.NotesListed.Set(float64(len(notes)))
	}
	return notes, err
}
