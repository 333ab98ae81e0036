// Package selection holds the set of picked version cards and derives the
// "## Interface:" line from it.
package selection

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wowtoc/internal/observability"
	"wowtoc/internal/toc"
)

// StorageKey is the fixed key selections are persisted under.
const StorageKey = "selectedCards"

const (
	displayPrefix      = "## Interface: "
	displayPlaceholder = displayPrefix + "(Select versions below)"
	persistTimeout     = 3 * time.Second
)

// Entry is one selected card and the interface value cached when it was picked.
type Entry struct {
	CardID    string `json:"id"`
	Interface string `json:"interface"`
}

// Persister is the byte store a Store saves itself to.
// storage.KV satisfies it.
type Persister interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store is an insertion-ordered CardID → interface map.
type Store struct {
	mu      sync.Mutex
	order   []string
	values  map[string]string
	persist Persister
	key     string
}

// New restores the map saved under key, or starts empty when nothing
// usable is stored. A nil Persister keeps the store memory-only.
func New(ctx context.Context, p Persister, key string) *Store {
	s := &Store{values: map[string]string{}, persist: p, key: key}
	if p == nil {
		return s
	}

	raw, ok, err := p.Get(ctx, key)
	if err != nil {
		observability.PersistenceErrors.WithLabelValues("read").Inc()
		log.Error().Err(err).Str("key", key).Msg("restore selection")
		return s
	}
	if !ok {
		return s
	}
	entries, err := Unmarshal(raw)
	if err != nil {
		observability.PersistenceErrors.WithLabelValues("decode").Inc()
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable selection")
		return s
	}
	for _, e := range entries {
		s.order = append(s.order, e.CardID)
		s.values[e.CardID] = e.Interface
	}
	return s
}

// Toggle selects the card when absent and deselects it when present.
// It reports whether the card is selected afterwards.
func (s *Store) Toggle(product, region, versionName string) bool {
	id := toc.CardID(product, region, versionName)
	encoded := toc.Interface(versionName)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, present := s.values[id]
	if present {
		s.remove(id)
		observability.Toggles.WithLabelValues("deselect").Inc()
	} else {
		s.order = append(s.order, id)
		s.values[id] = encoded
		observability.Toggles.WithLabelValues("select").Inc()
	}
	s.saveLocked()
	return !present
}

// Clear deselects every card.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.values = map[string]string{}
	s.saveLocked()
}

func (s *Store) Selected(cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[cardID]
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Entries returns the selection in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entriesLocked()
}

// Values returns the cached interface values in insertion order.
func (s *Store) Values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.values[id])
	}
	return out
}

// Display renders the current "## Interface:" line.
func (s *Store) Display() string {
	return DisplayString(s.Values())
}

// DisplayString merges duplicate values, drops the N/A sentinel and keeps
// first-occurrence order.
func DisplayString(values []string) string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(values))
	for _, v := range values {
		if v == toc.NotAvailable {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	if len(uniq) == 0 {
		return displayPlaceholder
	}
	return displayPrefix + strings.Join(uniq, ", ")
}

func (s *Store) remove(id string) {
	delete(s.values, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) entriesLocked() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{CardID: id, Interface: s.values[id]})
	}
	return out
}

// saveLocked writes the current map while s.mu is held so writes land in
// mutation order. Failures are logged and swallowed.
func (s *Store) saveLocked() {
	if s.persist == nil {
		return
	}
	raw, err := Marshal(s.entriesLocked())
	if err != nil {
		observability.PersistenceErrors.WithLabelValues("encode").Inc()
		log.Error().Err(err).Str("key", s.key).Msg("encode selection")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persist.Put(ctx, s.key, raw); err != nil {
		observability.PersistenceErrors.WithLabelValues("write").Inc()
		log.Error().Err(err).Str("key", s.key).Msg("persist selection")
	}
}
