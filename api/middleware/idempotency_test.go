package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

type fakeIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]string{}}
}

func (s *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = fmt.Sprint(value)
	return true, nil
}

func (s *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func (s *fakeIdempotencyStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// newRemindersTestRouter mirrors the production mounting: the middleware sits
// on the /api group while the reminders subrouter registers its root handler.
func newRemindersTestRouter(store *fakeIdempotencyStore, calls *int) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-idempotency", Level: logger.ParseLevel("debug"), Output: io.Discard})

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(Idempotency(store, logg))
		r.Route("/reminders", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, req *http.Request) {
				*calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"success":true}`))
			})
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return r
}

func TestIdempotencyGuardsRemindersCreateBothSpellings(t *testing.T) {
	for _, path := range []string{"/api/reminders", "/api/reminders/"} {
		t.Run(path, func(t *testing.T) {
			calls := 0
			router := newRemindersTestRouter(newFakeIdempotencyStore(), &calls)

			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"title":"anniversary"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Idempotency-Key")
			assert.Equal(t, 0, calls)
		})
	}
}

func TestIdempotencyStoresAndReplaysRemindersCreate(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newRemindersTestRouter(store, &calls)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/reminders", strings.NewReader(`{"title":"anniversary"}`))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, store.size())

	replay := send()
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls, "replay must be served from the stored record")
}

func TestIdempotencyIgnoresUnlistedRoutes(t *testing.T) {
	calls := 0
	router := newRemindersTestRouter(newFakeIdempotencyStore(), &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/reminders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
