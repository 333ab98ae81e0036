package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wowtoc/internal/backend"
	"wowtoc/internal/storage"
)

type stubSource struct{ versionCalls map[string]int }

func (s *stubSource) Products(context.Context) ([]string, error) { return []string{"wow"}, nil }

func (s *stubSource) Versions(_ context.Context, product string) (backend.Histories, error) {
	s.versionCalls[product]++
	return backend.Histories{}, nil
}

func newManager(kv *storage.Memory) (*Manager, *stubSource) {
	src := &stubSource{versionCalls: map[string]int{}}
	return NewManager(context.Background(), kv, src, "EU", "wowtoc_session"), src
}

func TestManager_IssuesCookie(t *testing.T) {
	m, _ := newManager(storage.NewMemory())

	rec := httptest.NewRecorder()
	s := m.Get(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "wowtoc_session", cookies[0].Name)
	assert.Equal(t, s.ID, cookies[0].Value)
	assert.Equal(t, "eu", s.GlobalRegion())
}

func TestManager_ReusesSession(t *testing.T) {
	m, _ := newManager(storage.NewMemory())
	first := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "wowtoc_session", Value: first.ID})
	rec := httptest.NewRecorder()
	second := m.Get(rec, req)

	assert.Same(t, first, second)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, m.Len())
}

func TestManager_RejectsForgedCookie(t *testing.T) {
	m, _ := newManager(storage.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "wowtoc_session", Value: "../../etc/passwd"})

	s := m.Get(httptest.NewRecorder(), req)
	assert.NotEqual(t, "../../etc/passwd", s.ID)
}

func TestManager_RestoresSelectionAfterRestart(t *testing.T) {
	kv := storage.NewMemory()
	m1, _ := newManager(kv)
	s := m1.Lookup("5f0c8a52-3f7e-4c61-9c5a-0c1de3b8f9a1")
	s.Selection.Toggle("wow", "eu", "11.0.2.1")

	m2, _ := newManager(kv)
	restored := m2.Lookup("5f0c8a52-3f7e-4c61-9c5a-0c1de3b8f9a1")
	assert.True(t, restored.Selection.Selected("wow-eu-11.0.2.1"))
	assert.Equal(t, "## Interface: 110002", restored.Selection.Display())
}

func TestSession_ViewsAreCreatedOnce(t *testing.T) {
	m, src := newManager(storage.NewMemory())
	s := m.Lookup("5f0c8a52-3f7e-4c61-9c5a-0c1de3b8f9a1")

	<-s.Catalog.Done()
	v1, ok := s.View("wow")
	require.True(t, ok)
	<-v1.Task().Done()
	v2, _ := s.View("wow")

	assert.Same(t, v1, v2)
	assert.Equal(t, 1, src.versionCalls["wow"])
}

func TestSession_ViewOnlyForCatalogProducts(t *testing.T) {
	m, src := newManager(storage.NewMemory())
	s := m.Lookup("5f0c8a52-3f7e-4c61-9c5a-0c1de3b8f9a1")
	<-s.Catalog.Done()

	for i := 0; i < 100; i++ {
		v, ok := s.View(uuid.NewString())
		assert.False(t, ok)
		assert.Nil(t, v)
	}
	assert.Empty(t, src.versionCalls)
	assert.Empty(t, s.views)
}

func TestManager_SweepEvictsIdleSessions(t *testing.T) {
	kv := storage.NewMemory()
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(context.Background(), kv, &stubSource{versionCalls: map[string]int{}}, "eu", "wowtoc_session",
		WithIdleTTL(10*time.Minute),
		WithClock(func() time.Time { return now }),
	)

	kept := m.Lookup("5f0c8a52-3f7e-4c61-9c5a-0c1de3b8f9a1")
	kept.Selection.Toggle("wow", "eu", "11.0.2.1")
	for i := 0; i < 500; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if i%2 == 1 {
			req.AddCookie(&http.Cookie{Name: "wowtoc_session", Value: uuid.NewString()})
		}
		m.Get(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 501, m.Len())

	now = now.Add(6 * time.Minute)
	m.Lookup(kept.ID)
	assert.Equal(t, 0, m.Sweep())

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 500, m.Sweep())
	assert.Equal(t, 1, m.Len())

	now = now.Add(11 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())

	restored := m.Lookup(kept.ID)
	assert.NotSame(t, kept, restored)
	assert.True(t, restored.Selection.Selected("wow-eu-11.0.2.1"))
}

type slowStore struct {
	*storage.Memory
	release chan struct{}
}

func (s *slowStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == StorageKey("slow") {
		<-s.release
	}
	return s.Memory.Get(ctx, key)
}

func TestManager_SlowRestoreDoesNotBlockOthers(t *testing.T) {
	store := &slowStore{Memory: storage.NewMemory(), release: make(chan struct{})}
	m := NewManager(context.Background(), store, &stubSource{versionCalls: map[string]int{}}, "eu", "wowtoc_session")

	done := make(chan *Session)
	go func() { done <- m.Lookup("slow") }()

	fast := make(chan *Session)
	go func() { fast <- m.Lookup("fast") }()
	select {
	case s := <-fast:
		assert.Equal(t, "fast", s.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("lookup blocked behind a slow restore")
	}

	close(store.release)
	assert.Equal(t, "slow", (<-done).ID)
}

func TestSession_SetGlobalRegion(t *testing.T) {
	m, _ := newManager(storage.NewMemory())
	s := m.Lookup("5f0c8a52-3f7e-4c61-9c5a-0c1de3b8f9a1")

	s.SetGlobalRegion(" KR ")
	assert.Equal(t, "kr", s.GlobalRegion())
	s.SetGlobalRegion("")
	assert.Equal(t, "kr", s.GlobalRegion())
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "selectedCards:abc", StorageKey("abc"))
}
