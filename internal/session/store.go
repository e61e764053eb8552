package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"systrack/console/internal/cache"
	"systrack/console/internal/models"
	"systrack/console/internal/security"
)

// Store persists gateway sessions. The upstream bearer token is the
// only secret in the record and is sealed before it reaches storage;
// everything else (role, id, name) mirrors the console's original
// durable keys. Logout destroys the record without any upstream call.
type Store struct {
	kv     cache.KV
	sealer *security.Sealer
	ttl    time.Duration
	log    zerolog.Logger
}

func NewStore(kv cache.KV, sealer *security.Sealer, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{kv: kv, sealer: sealer, ttl: ttl, log: log}
}

type record struct {
	SealedToken  string      `json:"token"`
	Role         models.Role `json:"role"`
	UserID       string      `json:"id"`
	Name         string      `json:"name"`
	VerifiedRole models.Role `json:"verifiedRole,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create persists a freshly authenticated session.
func (s *Store) Create(ctx context.Context, sess models.Session) error {
	if sess.ID == "" || sess.Empty() {
		return fmt.Errorf("incomplete session")
	}

	sealed, err := s.sealer.Seal(sess.Token)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	rec := record{
		SealedToken: sealed,
		Role:        sess.Role,
		UserID:      sess.UserID,
		Name:        sess.Name,
		CreatedAt:   sess.CreatedAt,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey(sess.ID), string(raw), s.ttl)
}

// Restore reconstructs the session for the given id. A missing or
// incomplete record yields the empty session and no error, so callers
// can distinguish "not logged in" from a storage failure; gating must
// not run before this returns.
func (s *Store) Restore(ctx context.Context, id string) (models.Session, error) {
	raw, err := s.kv.Get(ctx, sessionKey(id))
	if errors.Is(err, cache.ErrMiss) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if rec.SealedToken == "" || rec.UserID == "" || rec.Role == models.RoleNone {
		return models.Session{}, nil
	}

	token, err := s.sealer.Open(rec.SealedToken)
	if err != nil {
		// An unreadable token is indistinguishable from no session;
		// force a fresh login rather than failing every request.
		s.log.Warn().Str("session_id", id).Err(err).Msg("discarding unreadable session")
		_ = s.kv.Delete(ctx, sessionKey(id))
		return models.Session{}, nil
	}

	return models.Session{
		ID:           id,
		Token:        token,
		Role:         rec.Role,
		UserID:       rec.UserID,
		Name:         rec.Name,
		VerifiedRole: rec.VerifiedRole,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// MarkVerified records a successful upstream role check so sub-route
// requests under the same mount skip re-verification.
func (s *Store) MarkVerified(ctx context.Context, id string, role models.Role) error {
	sess, err := s.Restore(ctx, id)
	if err != nil {
		return err
	}
	if sess.Empty() {
		return fmt.Errorf("session %s gone", id)
	}
	sess.VerifiedRole = role

	sealed, err := s.sealer.Seal(sess.Token)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(record{
		SealedToken:  sealed,
		Role:         sess.Role,
		UserID:       sess.UserID,
		Name:         sess.Name,
		VerifiedRole: role,
		CreatedAt:    sess.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey(id), string(raw), s.ttl)
}

// Destroy clears the persisted record. Used by logout and by the
// auth-rejection path; there is no upstream invalidation to perform.
func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, sessionKey(id))
}
