package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/career-passport/pkg/middleware"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

func TestMessages(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/messages", map[string]string{
		"senderWallet": "0xA", "recipientWallet": "0xB", "content": "hello",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode(t, w)["message"].(map[string]interface{})
	assert.Equal(t, "0xa", msg["senderWallet"])
	assert.Equal(t, false, msg["read"])

	w = s.do(t, http.MethodPost, "/api/messages", map[string]string{"senderWallet": "0xa", "recipientWallet": "0xb"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "content", decode(t, w)["field"])

	w = s.do(t, http.MethodGet, "/api/messages?walletAddress=0xb&peer=0xa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 1)

	w = s.do(t, http.MethodGet, "/api/messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/messages/"+msg["messageId"].(string)+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/messages?walletAddress=0xb", nil)
	read := decode(t, w)["messages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, read["read"])
	assert.NotEmpty(t, read["readAt"])

	w = s.do(t, http.MethodPatch, "/api/messages/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatches(t *testing.T) {
	s := newTestServer(t)
	req := map[string]string{"studentWallet": "0xS", "orgWalletAddress": "0xO", "note": "intern"}

	w := s.do(t, http.MethodPost, "/api/matches", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	match := decode(t, w)["match"].(map[string]interface{})
	assert.Equal(t, "pending", match["status"])

	w = s.do(t, http.MethodPost, "/api/matches", req)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.ErrCodeConflict, decode(t, w)["code"])

	path := "/api/matches/" + match["matchId"].(string) + "/status"
	w = s.do(t, http.MethodPatch, path, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", decode(t, w)["match"].(map[string]interface{})["status"])

	w = s.do(t, http.MethodPatch, path, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/matches?walletAddress=0xo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["matches"], 1)

	w = s.do(t, http.MethodGet, "/api/matches", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPassport_NoChainConfigured(t *testing.T) {
	s := newTestServer(t)
	wallet := "0x1111111111111111111111111111111111111111"

	w := s.do(t, http.MethodGet, "/api/passport/"+wallet+"/stamps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []interface{}{}, body["stamps"])
	assert.Equal(t, "none", body["source"])
	assert.Equal(t, false, body["stale"])
	assert.NotContains(t, body, "fetchedAt")

	w = s.do(t, http.MethodGet, "/api/passport/"+wallet+"/nfts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["nfts"])

	w = s.do(t, http.MethodGet, "/api/passport/"+wallet+"/eligibility?organization=Acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Acme", body["organization"])
	assert.Equal(t, float64(0), body["stampCount"])
	assert.Equal(t, false, body["canMint"])
}

func TestPassport_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/passport/not-a-wallet/stamps", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "walletAddress", decode(t, w)["field"])

	w = s.do(t, http.MethodGet, "/api/passport/0x1111111111111111111111111111111111111111/eligibility", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "organization", decode(t, w)["field"])
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.mem.SetInitialized(false)
	w = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWriteRoutesRequireToken(t *testing.T) {
	const secret = "test-secret"
	s := newTestServer(t, withAuth(secret))

	w := s.do(t, http.MethodPost, "/api/events", summerIntern())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// reads stay public
	w = s.do(t, http.MethodGet, "/api/events", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            "user-1",
		"wallet_address": "0xabc0000000000000000000000000000000000001",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	w = s.do(t, http.MethodPost, "/api/events", summerIntern(), "Authorization", "Bearer "+signed)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestApplyIsRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	defer limiter.Stop()
	s := newTestServer(t, withLimiter(limiter))
	event := createEvent(t, s)
	path := "/api/events/" + event["eventId"].(string) + "/apply"

	w := s.do(t, http.MethodPost, path, map[string]string{"walletAddress": "0xa"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]string{"walletAddress": "0xb"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// event creation is not limited
	w = s.do(t, http.MethodPost, "/api/events", summerIntern())
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil, middleware.HeaderRequestID, "req-42")
	assert.Equal(t, "req-42", w.Header().Get(middleware.HeaderRequestID))
}
