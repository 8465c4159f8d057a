package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	mem    *repository.MemoryStore
	router *gin.Engine
}

type serverOption func(*RouterConfig, *Options)

func withProduction() serverOption {
	return func(_ *RouterConfig, o *Options) { o.Production = true }
}

func withAuth(secret string) serverOption {
	return func(rc *RouterConfig, _ *Options) {
		rc.Auth = middleware.JWTMiddleware(&middleware.JWTConfig{Secret: secret})
	}
}

func withLimiter(l *middleware.RateLimiter) serverOption {
	return func(rc *RouterConfig, _ *Options) { rc.Limiter = l }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	mem := repository.NewMemoryStore()
	store := mem.Store()
	hooks := service.Hooks{}

	rc := RouterConfig{}
	var o Options
	for _, opt := range opts {
		opt(&rc, &o)
	}

	passport := service.NewPassportService(nil, repository.NewMemorySnapshotCache(), service.PassportConfig{}, hooks)
	rc.Health = NewHealthHandler(store, "test", o)
	rc.Events = NewEventHandler(
		service.NewEventService(store.Events, hooks),
		service.NewApplicationService(store.Applications, hooks),
		o,
	)
	rc.Messages = NewMessageHandler(service.NewMessageService(store.Messages, hooks), o)
	rc.Matches = NewMatchHandler(service.NewMatchService(store.Matches, hooks), o)
	rc.Passport = NewPassportHandler(passport, time.Second, o)

	return &testServer{mem: mem, router: NewRouter(rc)}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func summerIntern() map[string]interface{} {
	return map[string]interface{}{
		"title":            "Summer Intern",
		"startDate":        "2025-06-01",
		"endDate":          "2025-08-31",
		"orgWalletAddress": "0xabc0000000000000000000000000000000000001",
	}
}

func createEvent(t *testing.T, s *testServer) map[string]interface{} {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/events", summerIntern())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["event"].(map[string]interface{})
}
