package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedRequestLogger(t *testing.T) {
	dir := t.TempDir()

	h := FailedRequestLogger(dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/cards", "/missing?x=1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.7"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	raw, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "["))
	assert.Contains(t, lines[0], "] GET /missing?x=1 - 404 - IP: 10.0.0.7")
}

func TestErrorFileHook(t *testing.T) {
	dir := t.TempDir()

	logger := log.New()
	logger.SetOutput(&strings.Builder{})
	logger.AddHook(NewErrorFileHook(dir))

	logger.Info("not recorded")
	logger.WithField("error_id", "abc").Error("store failed")

	raw, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "store failed")
	assert.Contains(t, string(raw), "error_id=abc")
	assert.NotContains(t, string(raw), "not recorded")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/cards", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/cards", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
