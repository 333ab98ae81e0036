// Package session tracks per-browser state: the selection store, the global
// region and the catalog views loaded for that browser.
package session

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wowtoc/internal/catalog"
	"wowtoc/internal/loader"
	"wowtoc/internal/selection"
)

// Session is the state of one browser. It lives in memory until it has been
// idle for longer than the manager's idle TTL.
type Session struct {
	ID        string
	Selection *selection.Store
	Catalog   *loader.Task[[]string]

	ctx      context.Context
	src      catalog.Source
	lastSeen atomic.Int64 // unix nanos

	mu     sync.Mutex
	region string
	views  map[string]*catalog.ProductView
}

// GlobalRegion is the preferred region applied to every product.
func (s *Session) GlobalRegion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// SetGlobalRegion changes the preferred region; blank input is ignored.
func (s *Session) SetGlobalRegion(code string) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = code
}

// View returns the view of a catalog product, creating it and starting its
// fetch on first use. Products outside the loaded catalog get no view.
func (s *Session) View(product string) (*catalog.ProductView, bool) {
	st := s.Catalog.State()
	if st.Phase != loader.Loaded || !slices.Contains(st.Data, product) {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[product]
	if !ok {
		v = catalog.NewProductView(s.ctx, s.src, product)
		s.views[product] = v
	}
	return v, true
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// DefaultIdleTTL is how long an untouched session stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// Manager hands out sessions keyed by a cookie.
type Manager struct {
	ctx           context.Context
	store         selection.Persister
	src           catalog.Source
	defaultRegion string
	cookieName    string
	idleTTL       time.Duration
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL sets how long an idle session is kept. Non-positive values keep the default.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.idleTTL = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a Manager. ctx bounds every background fetch.
func NewManager(ctx context.Context, store selection.Persister, src catalog.Source, defaultRegion, cookieName string, opts ...ManagerOption) *Manager {
	m := &Manager{
		ctx:           ctx,
		store:         store,
		src:           src,
		defaultRegion: strings.ToLower(defaultRegion),
		cookieName:    cookieName,
		idleTTL:       DefaultIdleTTL,
		now:           time.Now,
		sessions:      map[string]*Session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StorageKey namespaces the fixed selection key per session.
func StorageKey(id string) string {
	return selection.StorageKey + ":" + id
}

// Get returns the caller's session, issuing a cookie when it has none.
// An unknown but well-formed id is adopted so persisted selections survive
// restarts.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Session {
	id := ""
	if c, err := r.Cookie(m.cookieName); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return m.Lookup(id)
}

// Lookup returns the session for id, creating it if needed. The selection
// is restored before the manager lock is taken.
func (m *Manager) Lookup(id string) *Session {
	now := m.now()
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.touch(now)
		return s
	}

	sel := selection.New(m.ctx, m.store, StorageKey(id))

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch(now)
		return s
	}
	s = &Session{
		ID:        id,
		Selection: sel,
		Catalog:   catalog.LoadProducts(m.ctx, m.src),
		ctx:       m.ctx,
		src:       m.src,
		region:    m.defaultRegion,
		views:     map[string]*catalog.ProductView{},
	}
	s.touch(now)
	m.sessions[id] = s
	log.Debug().Str("session", id).Int("restored", sel.Len()).Msg("session started")
	return s
}

// Sweep drops sessions idle for longer than the idle TTL and returns how
// many were dropped. Their selections stay in storage.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.idleTTL {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		log.Debug().Int("evicted", n).Int("live", len(m.sessions)).Msg("idle sessions swept")
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (m *Manager) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.idleTTL / 2
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
