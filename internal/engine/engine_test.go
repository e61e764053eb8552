package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"systrack/console/internal/cache"
	"systrack/console/internal/config"
	"systrack/console/internal/models"
	"systrack/console/internal/upstream"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return value, nil
}

func (m *memKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type testEngine struct {
	engine    *Engine
	parts     *cache.PartsStore
	systems   *cache.SystemsStore
	employees *cache.EmployeesStore
	stats     *cache.StatsStore
}

func newTestEngine(baseURL string) testEngine {
	kv := newMemKV()
	parts := cache.NewPartsStore(kv, time.Hour)
	systems := cache.NewSystemsStore(kv, time.Hour)
	employees := cache.NewEmployeesStore(kv, time.Hour)
	stats := cache.NewStatsStore(kv, time.Hour)

	api := upstream.NewClient(config.UpstreamConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, zerolog.Nop(), nil)
	return testEngine{
		engine:    New(api, parts, systems, employees, stats, 10, zerolog.Nop()),
		parts:     parts,
		systems:   systems,
		employees: employees,
		stats:     stats,
	}
}

func TestCreateSystemValidatesBeforeAnyRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	te := newTestEngine(srv.URL)
	_, err := te.engine.CreateSystem(context.Background(), "token", upstream.SystemInput{})

	var valErr *upstream.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %T, want ValidationError", err)
	}
	if valErr.Fields["name"] == "" || valErr.Fields["parts"] == "" {
		t.Errorf("fields = %v, want name and parts messages", valErr.Fields)
	}
	if hits.Load() != 0 {
		t.Errorf("invalid input reached the backend %d times", hits.Load())
	}
}

func TestCreateSystemRefreshesCaches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/system/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "System created successfully"})
	})
	mux.HandleFunc("GET /api/system/allsys", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"systems": []models.System{{ID: "s1", Name: "BUILD-01"}}})
	})
	mux.HandleFunc("GET /api/part", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstream.PartsPage{
			Parts:      []models.Part{{ID: "p1", AssignedSystem: "s1"}},
			TotalPages: 1,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	te := newTestEngine(srv.URL)
	message, err := te.engine.CreateSystem(context.Background(), "token", upstream.SystemInput{
		Name:  "BUILD-01",
		Parts: []string{"p1"},
	})
	if err != nil {
		t.Fatalf("CreateSystem: %v", err)
	}
	if message != "System created successfully" {
		t.Errorf("message = %q", message)
	}

	snap, ok, err := te.systems.Get(context.Background())
	if err != nil || !ok {
		t.Fatalf("systems cache after create: ok=%v err=%v", ok, err)
	}
	if len(snap.Systems) != 1 || snap.Systems[0].Name != "BUILD-01" {
		t.Errorf("systems snapshot = %+v", snap.Systems)
	}

	partsSnap, ok, err := te.parts.Get(context.Background(), cache.ListQuery{Page: 1, Limit: 10})
	if err != nil || !ok {
		t.Fatalf("parts cache after create: ok=%v err=%v", ok, err)
	}
	if len(partsSnap.Parts) != 1 {
		t.Errorf("parts snapshot = %+v", partsSnap.Parts)
	}
}

func TestUnassignSystemRefreshesBothSides(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/system/unassign/s1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "System unassigned"})
	})
	mux.HandleFunc("GET /api/system/allsys", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"systems": []models.System{{ID: "s1", Name: "BUILD-01"}}})
	})
	mux.HandleFunc("GET /api/employee/allemployee", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstream.EmployeesPage{
			Employees:  []models.Employee{{ID: "e1", Name: "Priya"}},
			TotalPages: 1,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	te := newTestEngine(srv.URL)
	ctx := context.Background()

	// Stale snapshot from before the unassign still shows the
	// allocation.
	stale := cache.EmployeesSnapshot{
		Employees:  []models.Employee{{ID: "e1", Name: "Priya", AllocatedSystem: "s1"}},
		TotalPages: 1,
	}
	if err := te.employees.Put(ctx, cache.ListQuery{Page: 1, Limit: 10}, stale); err != nil {
		t.Fatalf("seed employees: %v", err)
	}

	message, err := te.engine.UnassignSystem(ctx, "token", "s1")
	if err != nil {
		t.Fatalf("UnassignSystem: %v", err)
	}
	if message != "System unassigned" {
		t.Errorf("message = %q", message)
	}

	snap, ok, err := te.employees.Get(ctx, cache.ListQuery{Page: 1, Limit: 10})
	if err != nil || !ok {
		t.Fatalf("employees cache after unassign: ok=%v err=%v", ok, err)
	}
	if len(snap.Employees) != 1 || !snap.Employees[0].Unassigned() {
		t.Errorf("employees snapshot = %+v, want e1 back in the unassigned pool", snap.Employees)
	}

	if _, ok, err := te.systems.Get(ctx); err != nil || !ok {
		t.Errorf("systems cache after unassign: ok=%v err=%v", ok, err)
	}
}

func TestAssignEmployeeRefreshesBothSides(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/system/assignSystem/s1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "System assigned"})
	})
	mux.HandleFunc("GET /api/system/allsys", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"systems": []models.System{
			{ID: "s1", Name: "BUILD-01", AssignedTo: &models.EmployeeRef{ID: "e1", Name: "Priya"}},
		}})
	})
	mux.HandleFunc("GET /api/employee/allemployee", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstream.EmployeesPage{
			Employees:  []models.Employee{{ID: "e1", Name: "Priya", AllocatedSystem: "s1"}},
			TotalPages: 1,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	te := newTestEngine(srv.URL)
	ctx := context.Background()

	if _, err := te.engine.AssignEmployee(ctx, "token", "s1", "e1"); err != nil {
		t.Fatalf("AssignEmployee: %v", err)
	}

	snap, ok, err := te.employees.Get(ctx, cache.ListQuery{Page: 1, Limit: 10})
	if err != nil || !ok {
		t.Fatalf("employees cache after assign: ok=%v err=%v", ok, err)
	}
	if len(snap.Employees) != 1 || snap.Employees[0].AllocatedSystem != "s1" {
		t.Errorf("employees snapshot = %+v, want e1 allocated to s1", snap.Employees)
	}

	sysSnap, ok, err := te.systems.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("systems cache after assign: ok=%v err=%v", ok, err)
	}
	if len(sysSnap.Systems) != 1 || sysSnap.Systems[0].AssignedTo == nil || sysSnap.Systems[0].AssignedTo.ID != "e1" {
		t.Errorf("systems snapshot = %+v", sysSnap.Systems)
	}
}

func TestUpdatePartEmptyDiffSendsNothing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	te := newTestEngine(srv.URL)
	form := map[string]string{"brand": "Dell", "model": "R540"}

	changed, _, err := te.engine.UpdatePart(context.Background(), "token", "p1", form, form)
	if err != nil {
		t.Fatalf("UpdatePart: %v", err)
	}
	if changed {
		t.Error("identical form reported as changed")
	}
	if hits.Load() != 0 {
		t.Errorf("no-op update reached the backend %d times", hits.Load())
	}
}

func TestUpdatePartSendsOnlyChangedFields(t *testing.T) {
	var captured map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/part/p1", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]string{"message": "Part updated"})
	})
	mux.HandleFunc("GET /api/part", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstream.PartsPage{TotalPages: 1})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	te := newTestEngine(srv.URL)
	original := map[string]string{"brand": "Dell", "model": "R540", "notes": ""}
	form := map[string]string{"brand": "Dell", "model": "R550", "notes": ""}

	changed, message, err := te.engine.UpdatePart(context.Background(), "token", "p1", original, form)
	if err != nil {
		t.Fatalf("UpdatePart: %v", err)
	}
	if !changed || message != "Part updated" {
		t.Errorf("changed=%v message=%q", changed, message)
	}
	if len(captured) != 1 || captured["model"] != "R550" {
		t.Errorf("request body = %v, want only the changed model", captured)
	}
}

func TestStatsServesCachedSnapshotWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	te := newTestEngine(srv.URL)
	want := models.Stats{TotalSystems: 12, TotalParts: 48, TotalEmployees: 30}
	if err := te.stats.Put(context.Background(), want); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	got, err := te.engine.Stats(context.Background(), "token")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestStatsErrorWithoutSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	te := newTestEngine(srv.URL)
	if _, err := te.engine.Stats(context.Background(), "token"); err == nil {
		t.Fatal("Stats returned no error with an empty cache and a dead backend")
	}
}

func TestCreatePartAppendsToCachedListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/part", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(upstream.PartsPage{
			Parts:      []models.Part{{ID: "p1"}},
			TotalPages: 1,
		})
	})
	mux.HandleFunc("POST /api/part", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Part created",
			"part":    models.Part{ID: "p2", Brand: "Kingston"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	te := newTestEngine(srv.URL)
	ctx := context.Background()
	defaultQuery := cache.ListQuery{Page: 1, Limit: 10}

	if _, err := te.engine.ListParts(ctx, "token", defaultQuery); err != nil {
		t.Fatalf("ListParts: %v", err)
	}
	if _, _, err := te.engine.CreatePart(ctx, "token", upstream.PartInput{Brand: "Kingston"}); err != nil {
		t.Fatalf("CreatePart: %v", err)
	}

	snap, ok, err := te.parts.Get(ctx, defaultQuery)
	if err != nil || !ok {
		t.Fatalf("parts cache: ok=%v err=%v", ok, err)
	}
	if len(snap.Parts) != 2 || snap.Parts[1].ID != "p2" {
		t.Errorf("snapshot parts = %+v, want appended p2", snap.Parts)
	}
}

func TestUnusablePartsFiltersAcrossPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/part", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			json.NewEncoder(w).Encode(upstream.PartsPage{
				Parts: []models.Part{
					{ID: "p1", Status: models.PartStatusActive},
					{ID: "p2", Status: models.PartStatusUnusable, UnusableReason: "bent pins"},
				},
				TotalPages: 2,
			})
		default:
			json.NewEncoder(w).Encode(upstream.PartsPage{
				Parts: []models.Part{
					{ID: "p3", Status: models.PartStatusUnusable, UnusableReason: "dead cell"},
				},
				TotalPages: 2,
			})
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	te := newTestEngine(srv.URL)
	parts, err := te.engine.UnusableParts(context.Background(), "token")
	if err != nil {
		t.Fatalf("UnusableParts: %v", err)
	}
	if len(parts) != 2 || parts[0].ID != "p2" || parts[1].ID != "p3" {
		t.Errorf("parts = %+v", parts)
	}
}
