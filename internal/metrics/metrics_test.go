package metrics

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/starford/notesd/internal/storage"
)

func testStore(t *testing.T) (storage.Store, *Metrics) {
	t.Helper()
	fs, err := storage.NewFS(filepath.Join(t.TempDir(), "notes"))
	if err != nil {
		t.Fatal(err)
	}
	m := NewMetrics(prometheus.NewRegistry())
	s := InstrumentStore(fs, m)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s, m
}

func TestInstrumentStore_CountsResults(t *testing.T) {
	s, m := testStore(t)

	_ = s.Create("a", "1")
	_ = s.Create("a", "2")
	_, _ = s.Read("missing")
	_, _ = s.Read("../x")
	_ = s.Update("a", "3")
	_ = s.Delete("a")

	cases := []struct {
		op, result string
		want       float64
	}{
		{"create", "ok", 1},
		{"create", "already_exists", 1},
		{"read", "not_found", 1},
		{"read", "invalid_name", 1},
		{"update", "ok", 1},
		{"delete", "ok", 1},
		{"init", "ok", 1},
	}
	for _, c := range cases {
		got := testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues(c.op, c.result))
		if got != c.want {
			t.Errorf("%s/%s = %v, want %v", c.op, c.result, got, c.want)
		}
	}
}

func TestInstrumentStore_ListGauge(t *testing.T) {
	s, m := testStore(t)
	_ = s.Create("a", "1")
	_ = s.Create("b", "2")
	notes, err := s.List()
	if err != nil || len(notes) != 2 {
		t.Fatalf("List = %v, %v", notes, err)
	}
	if got := testutil.ToFloat64(m.NotesListed); got != 2 {
		t.Errorf("notes listed = %v, want 2", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/notes/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, name := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/notes/"+name, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/notes/{name}", "404"))
	if got != 3 {
		t.Errorf("requests = %v, want 3", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	s, m := testStore(t)
	_ = s.Create("a", "1")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "notesd_store_operations_total") {
		t.Error("exposition missing store counter")
	}
}
