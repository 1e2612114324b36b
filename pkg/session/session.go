// Package session keeps live layout sessions for incremental scrolling.
//
// A [Session] owns a [virtual.Host] over one board. Clients move the
// viewport, mutate the tile collection and change layout options through
// the session; each call runs a layout pass that only measures what the
// change invalidated, and returns the tiles realized in the new viewport.
//
// # Concurrency
//
// A host must never run two passes at once, so every session carries its
// own mutex and all host access goes through [Session.Do]. The [Manager]
// guards its map separately; long passes on one session never block
// lookups of another.
//
// # Expiry
//
// Sessions expire after a sliding TTL: every successful lookup pushes the
// deadline out again. Expired sessions are reported as SESSION_EXPIRED once
// and then forgotten; [Manager.Cleanup] sweeps the ones nobody asks for.
//
// # Usage
//
//	m := session.NewManager(session.DefaultTTL, logger)
//	sess, err := m.Create(ctx, b, session.Config{Viewport: vp})
//	view, err := sess.Scroll(ctx, 1200)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/core/stagger"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// Default limits.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSessions bounds the number of live sessions per manager.
	DefaultMaxSessions = 1024
)

// Config describes a new session.
type Config struct {
	Settings    board.Settings
	Viewport    virtual.Viewport
	CacheLength float64
}

// Session is one live layout over a board.
type Session struct {
	ID        string
	Board     string
	CreatedAt time.Time

	mu       sync.Mutex
	host     *virtual.Host
	settings board.Settings
	closed   bool

	// expMu guards expiresAt only, so lookups never wait on a running pass.
	expMu     sync.Mutex
	expiresAt time.Time
}

// View is what a client sees after a pass: the viewport, the content size,
// and the tiles arranged in the realization region.
type View struct {
	ID         string            `json:"id"`
	Board      string            `json:"board,omitempty"`
	Viewport   virtual.Viewport  `json:"viewport"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Columns    int               `json:"columns"`
	Tiles      int               `json:"tiles"`
	Placements []board.Placement `json:"placements"`
	Stats      stagger.PassStats `json:"stats"`
	Pool       virtual.PoolStats `json:"pool"`
	Reasons    []string          `json:"reasons,omitempty"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// Do runs fn with exclusive access to the session's host.
func (s *Session) Do(fn func(h *virtual.Host) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.New(errs.ErrCodeSessionExpired, "session %s is closed", s.ID)
	}
	return fn(s.host)
}

// View runs a pass if the layout asked for one and returns the result.
func (s *Session) View(ctx context.Context) (View, error) {
	var v View
	err := s.Do(func(h *virtual.Host) error {
		v = s.pass(ctx, h)
		return nil
	})
	return v, err
}

// Scroll moves the viewport top to offset and runs a pass.
func (s *Session) Scroll(ctx context.Context, offset float64) (View, error) {
	return s.update(ctx, func(h *virtual.Host) error {
		h.Scroll(offset)
		return nil
	})
}

// Resize changes the viewport size and runs a pass.
func (s *Session) Resize(ctx context.Context, width, height float64) (View, error) {
	return s.update(ctx, func(h *virtual.Host) error {
		return h.Resize(width, height)
	})
}

// SetViewport resizes the viewport when width or height is positive, then
// scrolls to offset, and runs one pass.
func (s *Session) SetViewport(ctx context.Context, width, height, offset float64) (View, error) {
	return s.update(ctx, func(h *virtual.Host) error {
		if width > 0 || height > 0 {
			cur := h.Viewport()
			if width <= 0 {
				width = cur.Width
			}
			if height <= 0 {
				height = cur.Height
			}
			if err := h.Resize(width, height); err != nil {
				return err
			}
		}
		h.Scroll(offset)
		return nil
	})
}

// Apply runs each mutation in order and then one pass. Mutations applied
// before a failing one stay applied.
func (s *Session) Apply(ctx context.Context, muts []virtual.Mutation) (View, error) {
	return s.update(ctx, func(h *virtual.Host) error {
		for _, m := range muts {
			if err := h.Apply(m); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetSettings merges the set fields of patch over the session's layout
// settings and runs a pass.
func (s *Session) SetSettings(ctx context.Context, patch board.Settings) (View, error) {
	return s.update(ctx, func(h *virtual.Host) error {
		merged := patch.Merge(s.settings)
		o, err := merged.Options()
		if err != nil {
			return err
		}
		if err := h.SetOptions(o); err != nil {
			return err
		}
		s.settings = merged
		return nil
	})
}

// Settings returns the session's layout settings.
func (s *Session) Settings() board.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Snapshot returns every placement the last pass visited.
func (s *Session) Snapshot() (board.Layout, error) {
	var l board.Layout
	err := s.Do(func(h *virtual.Host) error {
		l = h.Snapshot(s.Board)
		return nil
	})
	return l, err
}

// ExpiresAt returns the current expiry deadline.
func (s *Session) ExpiresAt() time.Time {
	s.expMu.Lock()
	defer s.expMu.Unlock()
	return s.expiresAt
}

// touch reports whether the session had expired at now, and otherwise
// pushes the deadline out by ttl.
func (s *Session) touch(now time.Time, ttl time.Duration) bool {
	s.expMu.Lock()
	defer s.expMu.Unlock()
	if now.After(s.expiresAt) {
		return false
	}
	s.expiresAt = now.Add(ttl)
	return true
}

func (s *Session) expired(now time.Time) bool {
	s.expMu.Lock()
	defer s.expMu.Unlock()
	return now.After(s.expiresAt)
}

func (s *Session) update(ctx context.Context, fn func(h *virtual.Host) error) (View, error) {
	var v View
	err := s.Do(func(h *virtual.Host) error {
		if err := fn(h); err != nil {
			return err
		}
		v = s.pass(ctx, h)
		return nil
	})
	return v, err
}

// pass must be called with s.mu held.
func (s *Session) pass(ctx context.Context, h *virtual.Host) View {
	res := h.Pass(ctx)
	v := View{
		ID:         s.ID,
		Board:      s.Board,
		Viewport:   h.Viewport(),
		Width:      res.Desired.Width,
		Height:     res.Desired.Height,
		Columns:    res.Geometry.ColumnCount,
		Tiles:      h.Len(),
		Placements: make([]board.Placement, 0, len(res.Arranged)),
		Stats:      res.Stats,
		Pool:       res.Pool,
		ExpiresAt:  s.ExpiresAt(),
	}
	for _, r := range res.Reasons {
		v.Reasons = append(v.Reasons, r.String())
	}
	st := h.State()
	for _, a := range res.Arranged {
		t := h.Tile(a.Index)
		col := -1
		if rec := st.ItemAt(a.Index); rec != nil {
			col = rec.Column()
		}
		v.Placements = append(v.Placements, board.Placement{
			ID:      t.ID,
			Index:   a.Index,
			Column:  col,
			X:       a.Bounds.X,
			Y:       a.Bounds.Y,
			Width:   a.Bounds.Width,
			Height:  a.Bounds.Height,
			Title:   t.Title,
			Caption: t.Caption,
			Color:   t.Color,
			URL:     t.URL,
		})
	}
	return v
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.host.Close()
		s.closed = true
	}
}

// =============================================================================
// Manager
// =============================================================================

// Manager is an in-memory session store.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	logger   *log.Logger
	now      func() time.Time
}

// NewManager creates a manager. A zero ttl uses [DefaultTTL]; a nil logger
// disables host debug logging.
func NewManager(ttl time.Duration, logger *log.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      DefaultMaxSessions,
		logger:   logger,
		now:      time.Now,
	}
}

// TTL returns the idle timeout.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create starts a session over b and runs its first pass.
func (m *Manager) Create(ctx context.Context, b *board.Board, cfg Config) (*Session, View, error) {
	if err := b.Validate(); err != nil {
		return nil, View{}, err
	}
	settings := cfg.Settings.Merge(b.Layout)
	o, err := settings.Options()
	if err != nil {
		return nil, View{}, err
	}
	if cfg.Viewport.Width < 0 || cfg.Viewport.Height < 0 {
		return nil, View{}, errs.New(errs.ErrCodeInvalidOptions, "viewport must not be negative")
	}

	opts := []virtual.Option{
		virtual.WithViewport(cfg.Viewport),
		virtual.WithLayoutOptions(o),
	}
	if cfg.CacheLength > 0 {
		opts = append(opts, virtual.WithCacheLength(cfg.CacheLength))
	}
	if m.logger != nil {
		opts = append(opts, virtual.WithLogger(m.logger))
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Board:     b.Name,
		CreatedAt: now,
		settings:  settings,
		expiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	if len(m.sessions) >= m.max {
		m.mu.Unlock()
		return nil, View{}, errs.New(errs.ErrCodeRateLimited, "too many sessions (max %d)", m.max)
	}
	s.host = virtual.New(b.Tiles, opts...)
	m.sessions[s.ID] = s
	m.mu.Unlock()

	view, err := s.View(ctx)
	if err != nil {
		return nil, View{}, err
	}
	if m.logger != nil {
		m.logger.Debug("session created", "id", s.ID, "board", b.Name, "tiles", len(b.Tiles))
	}
	return s, view, nil
}

// Get returns the session and extends its expiry.
func (m *Manager) Get(_ context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	expired := !s.touch(m.now(), m.ttl)
	if expired {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if expired {
		s.close()
		return nil, errs.New(errs.ErrCodeSessionExpired, "session %q expired", id)
	}
	return s, nil
}

// Delete closes and removes a session.
func (m *Manager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	s.close()
	return nil
}

// Cleanup closes every expired session and returns how many it removed.
func (m *Manager) Cleanup(_ context.Context) int {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.expired(now) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 && m.logger != nil {
		m.logger.Debug("expired sessions removed", "count", len(expired))
	}
	return len(expired)
}

// Run calls Cleanup every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Cleanup(ctx)
		}
	}
}

// Len returns the number of sessions, expired or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close closes every session.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
	return nil
}
