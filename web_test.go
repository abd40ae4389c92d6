package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, string(body)
}

func TestHealthzEmpty(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok","rooms":0,"players":0}`, body)
}

func TestVersionEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/version")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "codebattle v"+releaseVersion+"\n", body)
}

func TestRobots(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Disallow: /")
}

func TestSecurityHeaders(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts, "/version")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"), "no HSTS without TLS")
}

func TestLobbyPageServed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "codebattle")
	assert.Contains(t, body, "Connecting to server...")
}

func TestAssetsServed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/assets/lobby/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/javascript")
	assert.Contains(t, body, "join_room")

	resp, _ = get(t, ts, "/assets/lobby/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoomQR(t *testing.T) {
	ts, mgr := newTestServer(t)

	resp, _ := get(t, ts, "/join/QQQQQQ/qr")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	room, _, err := mgr.Join(newFakeClient("s1"), "Ann", "")
	require.NoError(t, err)

	resp, body := get(t, ts, "/join/"+strings.ToLower(room.code)+"/qr")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"), "response should be a PNG")
}

func TestRealIP(t *testing.T) {
	mk := func(remote string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	assert.Equal(t, "203.0.113.9:4242", realIP(mk("203.0.113.9:4242", nil)))
	assert.Equal(t, "198.51.100.7:4242", realIP(mk("203.0.113.9:4242", map[string]string{"CF-Connecting-IP": "198.51.100.7"})))
	assert.Equal(t, "198.51.100.7:4242", realIP(mk("203.0.113.9:4242", map[string]string{"X-Real-IP": "198.51.100.7"})))
	assert.Equal(t, "203.0.113.9:4242", realIP(mk("203.0.113.9:4242", map[string]string{"X-Real-IP": "not-an-ip"})))
	assert.Equal(t, "[2001:db8::1]:4242", realIP(mk("[2001:db8::1]:4242", nil)))
}
