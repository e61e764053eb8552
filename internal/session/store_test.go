package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"systrack/console/internal/cache"
	"systrack/console/internal/models"
	"systrack/console/internal/security"
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

func newTestStore(t *testing.T) (*Store, *memKV) {
	t.Helper()
	sealer, err := security.NewSealer("test-seal-key")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	kv := newMemKV()
	return NewStore(kv, sealer, time.Hour, zerolog.Nop()), kv
}

func testSession() models.Session {
	return models.Session{
		ID:        "sess-1",
		Token:     "upstream-bearer-token",
		Role:      models.RoleSuperAdmin,
		UserID:    "user-1",
		Name:      "Priya",
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

func TestCreateRestoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testSession()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Restore(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got.Empty() {
		t.Fatal("Restore returned an empty session")
	}
	if got.Token != "upstream-bearer-token" {
		t.Errorf("Token = %q", got.Token)
	}
	if got.Role != models.RoleSuperAdmin || got.UserID != "user-1" || got.Name != "Priya" {
		t.Errorf("restored identity = %+v", got)
	}
	if got.VerifiedRole != models.RoleNone {
		t.Errorf("fresh session VerifiedRole = %q, want none", got.VerifiedRole)
	}
}

func TestTokenSealedAtRest(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testSession()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, err := kv.Get(ctx, "session:sess-1")
	if err != nil {
		t.Fatalf("raw record: %v", err)
	}
	if strings.Contains(raw, "upstream-bearer-token") {
		t.Fatal("stored record holds the bearer token in clear")
	}
}

func TestRestoreMissingIsEmptyNotError(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Restore(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("Restore of unknown id = %+v, want empty", got)
	}
}

func TestCreateRejectsIncompleteSession(t *testing.T) {
	store, _ := newTestStore(t)

	sess := testSession()
	sess.Token = ""
	if err := store.Create(context.Background(), sess); err == nil {
		t.Fatal("Create accepted a session without a token")
	}
}

func TestMarkVerifiedPersists(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testSession()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkVerified(ctx, "sess-1", models.RoleSuperAdmin); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}

	got, err := store.Restore(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got.VerifiedRole != models.RoleSuperAdmin {
		t.Errorf("VerifiedRole = %q, want superadmin", got.VerifiedRole)
	}
	if got.Token != "upstream-bearer-token" {
		t.Errorf("Token lost across MarkVerified: %q", got.Token)
	}
}

func TestDestroyThenRestoreIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testSession()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Destroy(ctx, "sess-1"); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	got, err := store.Restore(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !got.Empty() {
		t.Fatal("session survived Destroy")
	}
}

func TestRestoreDiscardsUnreadableRecord(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	// A record sealed under a different key cannot be opened.
	other, err := security.NewSealer("another-key")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sealed, err := other.Seal("upstream-bearer-token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	record := `{"token":"` + sealed + `","role":"superadmin","id":"user-1","name":"Priya","createdAt":"2024-01-01T00:00:00Z"}`
	if err := kv.Set(ctx, "session:sess-1", record, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Restore(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !got.Empty() {
		t.Fatal("unreadable record restored as a live session")
	}
	if _, err := kv.Get(ctx, "session:sess-1"); err == nil {
		t.Fatal("unreadable record not discarded")
	}
}
