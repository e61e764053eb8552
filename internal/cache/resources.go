package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"systrack/console/internal/models"
)

// The resource caches map entity-list queries to their last-fetched
// results. They are populated only by explicit fetch completions and
// read back by list views; the upstream service stays authoritative
// and every mutation is followed by a re-fetch. Last write wins.

// ListQuery identifies one list fetch.
type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

func (q ListQuery) key() string {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if encoded := values.Encode(); encoded != "" {
		return encoded
	}
	return "all"
}

func put(ctx context.Context, kv KV, key string, snap any, ttl time.Duration) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, string(raw), ttl)
}

func get(ctx context.Context, kv KV, key string, out any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(raw), out)
}

// PartsSnapshot is the last-fetched result of one parts query.
type PartsSnapshot struct {
	Parts      []models.Part `json:"parts"`
	TotalPages int           `json:"totalPages"`
	FetchedAt  time.Time     `json:"fetchedAt"`
}

type PartsStore struct {
	kv  KV
	ttl time.Duration
}

func NewPartsStore(kv KV, ttl time.Duration) *PartsStore {
	return &PartsStore{kv: kv, ttl: ttl}
}

func (s *PartsStore) Put(ctx context.Context, q ListQuery, snap PartsSnapshot) error {
	snap.FetchedAt = time.Now()
	return put(ctx, s.kv, "cache:parts:"+q.key(), snap, s.ttl)
}

func (s *PartsStore) Get(ctx context.Context, q ListQuery) (PartsSnapshot, bool, error) {
	var snap PartsSnapshot
	ok, err := get(ctx, s.kv, "cache:parts:"+q.key(), &snap)
	return snap, ok, err
}

// Append adds a freshly created part to an existing snapshot. This is
// a display shortcut only; the authoritative state arrives with the
// next re-fetch.
func (s *PartsStore) Append(ctx context.Context, q ListQuery, part models.Part) error {
	snap, ok, err := s.Get(ctx, q)
	if err != nil || !ok {
		return err
	}
	snap.Parts = append(snap.Parts, part)
	return put(ctx, s.kv, "cache:parts:"+q.key(), snap, s.ttl)
}

// SystemsSnapshot is the last-fetched systems listing.
type SystemsSnapshot struct {
	Systems   []models.System `json:"systems"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

type SystemsStore struct {
	kv  KV
	ttl time.Duration
}

func NewSystemsStore(kv KV, ttl time.Duration) *SystemsStore {
	return &SystemsStore{kv: kv, ttl: ttl}
}

func (s *SystemsStore) Put(ctx context.Context, snap SystemsSnapshot) error {
	snap.FetchedAt = time.Now()
	return put(ctx, s.kv, "cache:systems:all", snap, s.ttl)
}

func (s *SystemsStore) Get(ctx context.Context) (SystemsSnapshot, bool, error) {
	var snap SystemsSnapshot
	ok, err := get(ctx, s.kv, "cache:systems:all", &snap)
	return snap, ok, err
}

// EmployeesSnapshot is the last-fetched result of one employee query.
type EmployeesSnapshot struct {
	Employees  []models.Employee `json:"employees"`
	TotalPages int               `json:"totalPages"`
	FetchedAt  time.Time         `json:"fetchedAt"`
}

type EmployeesStore struct {
	kv  KV
	ttl time.Duration
}

func NewEmployeesStore(kv KV, ttl time.Duration) *EmployeesStore {
	return &EmployeesStore{kv: kv, ttl: ttl}
}

func (s *EmployeesStore) Put(ctx context.Context, q ListQuery, snap EmployeesSnapshot) error {
	snap.FetchedAt = time.Now()
	return put(ctx, s.kv, "cache:employees:"+q.key(), snap, s.ttl)
}

func (s *EmployeesStore) Get(ctx context.Context, q ListQuery) (EmployeesSnapshot, bool, error) {
	var snap EmployeesSnapshot
	ok, err := get(ctx, s.kv, "cache:employees:"+q.key(), &snap)
	return snap, ok, err
}

// StatsStore holds the dashboard counters snapshot.
type StatsStore struct {
	kv  KV
	ttl time.Duration
}

type StatsSnapshot struct {
	Stats     models.Stats `json:"stats"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

func NewStatsStore(kv KV, ttl time.Duration) *StatsStore {
	return &StatsStore{kv: kv, ttl: ttl}
}

func (s *StatsStore) Put(ctx context.Context, stats models.Stats) error {
	return put(ctx, s.kv, "cache:stats", StatsSnapshot{Stats: stats, FetchedAt: time.Now()}, s.ttl)
}

func (s *StatsStore) Get(ctx context.Context) (StatsSnapshot, bool, error) {
	var snap StatsSnapshot
	ok, err := get(ctx, s.kv, "cache:stats", &snap)
	return snap, ok, err
}
