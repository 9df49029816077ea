package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orrn/printbridge/internal/api"
	"github.com/orrn/printbridge/internal/config"
	"github.com/orrn/printbridge/internal/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "printjobs.db")

	conn, err := db.Open(db.Config{Driver: cfg.Database.Driver, Path: cfg.Database.Path})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn))

	router, err := api.SetupRouter(cfg, db.NewJobStore(conn), nil)
	require.NoError(t, err)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateThenView(t *testing.T) {
	router := newTestServer(t)

	w := serve(router, http.MethodPost, "/api/print-jobs", `{"data":[{"zpl":"^XA^FS^XZ"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created struct {
		JobID   string `json:"job_id"`
		ViewURL string `json:"view_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.JobID)
	assert.Equal(t, "http://example.com/view?id="+created.JobID, created.ViewURL)

	u, err := url.Parse(created.ViewURL)
	require.NoError(t, err)

	first := serve(router, http.MethodGet, u.RequestURI(), "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "^XA^FS^XZ")
	assert.Contains(t, first.Body.String(), `id="print-job"`)

	second := serve(router, http.MethodGet, u.RequestURI(), "")
	assert.Equal(t, first.Body.String(), second.Body.String())

	apiResp := serve(router, http.MethodGet, "/api/print-jobs/"+created.JobID, "")
	require.Equal(t, http.StatusOK, apiResp.Code)
	assert.JSONEq(t, `[{"zpl":"^XA^FS^XZ"}]`, string(mustField(t, apiResp.Body.Bytes(), "data")))
	assert.JSONEq(t,
		`{"jobId":"`+created.JobID+`","directives":[{"type":"zpl","raw":"^XA^FS^XZ"}]}`,
		string(mustField(t, apiResp.Body.Bytes(), "bridge")))
}

func TestViewUnknownJob(t *testing.T) {
	router := newTestServer(t)

	w := serve(router, http.MethodGet, "/view?id=does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "does-not-exist")
	assert.Contains(t, w.Body.String(), "not found")

	w = serve(router, http.MethodGet, "/api/print-jobs/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Print job with ID 'does-not-exist' not found."}`, w.Body.String())
}

func TestHealthAndLanding(t *testing.T) {
	router := newTestServer(t)

	w := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"local-print-bridge"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http://example.com/api/print-jobs")

	w = serve(router, http.MethodGet, "/static/bridge.js", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "WebSocket")
}

func TestCreate_BodyTooLarge(t *testing.T) {
	router := newTestServer(t)

	big := `{"data":[{"zpl":"` + strings.Repeat("X", 2<<20) + `"}]}`
	w := serve(router, http.MethodPost, "/api/print-jobs", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func mustField(t *testing.T, body []byte, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	v, ok := fields[name]
	require.True(t, ok, "missing field %s", name)
	return v
}
