package scan

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"systrack/console/internal/ids"
)

type State string

const (
	// StateScanning: frames are being consumed, nothing decoded yet.
	StateScanning State = "scanning"
	// StateDecoded: exactly one decode succeeded and the stream was
	// stopped automatically (single-shot policy).
	StateDecoded State = "decoded"
	// StateStopped: released without a decode.
	StateStopped State = "stopped"
)

var ErrSessionNotFound = errors.New("scan session not found")

type Status struct {
	State   State
	Barcode string
	// Lookup is the resolved part for a decoded session, once a caller
	// has attached it; polls after that reuse it instead of asking the
	// backend again.
	Lookup *LookupResult
}

type scanSession struct {
	id      string
	state   State
	barcode string
	lookup  *LookupResult
	timer   *time.Timer
}

func (s *scanSession) status() Status {
	return Status{State: s.state, Barcode: s.barcode, Lookup: s.lookup}
}

// Manager owns the scan-session lifecycle. A session acquires the
// frame stream on Start and is guaranteed to release it on every exit
// path: first successful decode, explicit Stop, idle expiry, and
// manager shutdown. Stop is idempotent.
type Manager struct {
	decoder  Decoder
	idle     time.Duration
	maxFrame int64
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*scanSession
	closed   bool
}

func NewManager(decoder Decoder, idle time.Duration, maxFrame int64, log zerolog.Logger) *Manager {
	if idle <= 0 {
		idle = 2 * time.Minute
	}
	if maxFrame <= 0 {
		maxFrame = 8 << 20
	}
	return &Manager{
		decoder:  decoder,
		idle:     idle,
		maxFrame: maxFrame,
		log:      log,
		sessions: make(map[string]*scanSession),
	}
}

// Start opens a new scanning session.
func (m *Manager) Start() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", errors.New("scanner shut down")
	}

	id := ids.New()
	sess := &scanSession{id: id, state: StateScanning}
	sess.timer = time.AfterFunc(m.idle, func() {
		m.expire(id)
	})
	m.sessions[id] = sess

	m.log.Debug().Str("scan_session", id).Msg("scan session started")
	return id, nil
}

// SubmitFrame feeds one camera frame to the session. A frame with no
// readable code leaves the session scanning; the first decode flips
// it to decoded and stops it for good.
func (m *Manager) SubmitFrame(id string, frame io.Reader) (Status, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Status{}, ErrSessionNotFound
	}
	if sess.state != StateScanning {
		status := sess.status()
		m.mu.Unlock()
		return status, nil
	}
	m.mu.Unlock()

	img, err := DecodeFrame(frame, m.maxFrame)
	if err != nil {
		return Status{}, err
	}

	text, err := m.decoder.Decode(img)
	if errors.Is(err, ErrNoCode) {
		m.touch(id)
		return Status{State: StateScanning}, nil
	}
	if err != nil {
		return Status{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok = m.sessions[id]
	if !ok {
		return Status{}, ErrSessionNotFound
	}
	if sess.state == StateScanning {
		sess.state = StateDecoded
		sess.barcode = text
		// Single-shot: keep the result readable for a while, then
		// reap the session.
		sess.timer.Reset(m.idle)
		m.log.Debug().Str("scan_session", id).Msg("barcode decoded, stream stopped")
	}
	return sess.status(), nil
}

// AttachLookup stores the resolved part for a decoded session so later
// polls serve it without another backend round-trip. The first attach
// wins; non-decoded and released sessions ignore it.
func (m *Manager) AttachLookup(id string, result LookupResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok || sess.state != StateDecoded || sess.lookup != nil {
		return
	}
	sess.lookup = &result
}

// Get reports the current session status.
func (m *Manager) Get(id string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Status{}, ErrSessionNotFound
	}
	return sess.status(), nil
}

// Stop releases the session. Safe to call from any exit path and any
// number of times.
func (m *Manager) Stop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release(id)
}

func (m *Manager) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release(id)
}

func (m *Manager) touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[id]; ok && sess.state == StateScanning {
		sess.timer.Reset(m.idle)
	}
}

// release must be called with the lock held.
func (m *Manager) release(id string) {
	sess, ok := m.sessions[id]
	if !ok {
		return
	}
	sess.timer.Stop()
	delete(m.sessions, id)
	m.log.Debug().Str("scan_session", id).Msg("scan session released")
}

// Close releases every live session; called on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id := range m.sessions {
		m.release(id)
	}
}

// Open reports how many sessions are currently live.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
