package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wordcloud/pkg/cache"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

const body = `{
	"words": [
		{"word": "cloud", "count": 10},
		{"word": "rain", "count": 6},
		{"word": "sky", "count": 4},
		{"word": "wind", "count": 2}
	],
	"width": 240,
	"height": 120,
	"max_size": 40,
	"seed": 7
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, logger), logger))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, payload string, header http.Header) *http.Response {
	t.Helper()
	var r io.Reader
	if payload != "" {
		r = strings.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(headerRequestID))

	resp = do(t, http.MethodGet, srv.URL+"/v1/version", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Contains(t, v, "version")
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", http.Header{headerRequestID: {"abc-123"}})
	assert.Equal(t, "abc-123", resp.Header.Get(headerRequestID))
}

func TestLayoutLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/v1/layout", body, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get(headerCache))

	var created layoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 4, created.Stats.Words)
	assert.Equal(t, 4, created.Stats.Placed+created.Stats.Dropped)
	assert.Equal(t, 240, created.Layout.Width)
	assert.Equal(t, "/v1/layouts/"+created.ID, resp.Header.Get("Location"))

	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched struct {
		Seed   uint64            `json:"seed"`
		Placed []json.RawMessage `json:"placed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, uint64(7), fetched.Seed)
	assert.Len(t, fetched.Placed, created.Stats.Placed)

	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID+"/svg?colors=gray&background=white", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	svg, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID+"/svg?colors=gray&background=white", "", nil)
	assert.Equal(t, "HIT", resp.Header.Get(headerCache))

	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID+"/png", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	png, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	resp = do(t, http.MethodPost, srv.URL+"/v1/layout", body, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get(headerCache))
}

func TestTenantsAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/v1/layout", body, http.Header{headerTenant: {"alpha"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created layoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID, "", http.Header{headerTenant: {"beta"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, http.MethodGet, srv.URL+"/v1/layouts/"+created.ID, "", http.Header{headerTenant: {"alpha"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/v1/layout", body, http.Header{headerTenant: {"beta"}})
	assert.Equal(t, "MISS", resp.Header.Get(headerCache))
}

func TestRenderOneShot(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/v1/render?format=png", body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Words-Placed"))

	resp = do(t, http.MethodPost, srv.URL+"/v1/render", body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header http.Header
		status int
		code   errs.Code
	}{
		{"unknown field", http.MethodPost, "/v1/layout", `{"wrods": []}`, nil, 400, errs.ErrCodeInvalidInput},
		{"malformed json", http.MethodPost, "/v1/layout", `{`, nil, 400, errs.ErrCodeInvalidInput},
		{"no words", http.MethodPost, "/v1/layout", `{}`, nil, 400, errs.ErrCodeEmptyInput},
		{"bad canvas", http.MethodPost, "/v1/layout", `{"words":[{"word":"a","count":1}],"width":-5,"height":10}`, nil, 400, errs.ErrCodeInvalidCanvas},
		{"negative timeout", http.MethodPost, "/v1/layout", `{"words":[{"word":"a","count":1}],"timeout":"-1s"}`, nil, 400, errs.ErrCodeInvalidConfig},
		{"bad format", http.MethodPost, "/v1/render?format=gif", body, nil, 400, errs.ErrCodeInvalidFormat},
		{"bad color", http.MethodPost, "/v1/render", `{"words":[{"word":"a","count":1}],"colors":"nope"}`, nil, 400, errs.ErrCodeInvalidColor},
		{"malformed id", http.MethodGet, "/v1/layouts/xyz", "", nil, 400, errs.ErrCodeInvalidInput},
		{"unknown id", http.MethodGet, "/v1/layouts/5f0c9a4e-8a4b-4f55-9d2c-7f1f0d3f7a11", "", nil, 404, errs.ErrCodeNotFound},
		{"bad tenant", http.MethodGet, "/v1/layouts/5f0c9a4e-8a4b-4f55-9d2c-7f1f0d3f7a11", "", http.Header{headerTenant: {"../x"}}, 400, errs.ErrCodeInvalidInput},
		{"no route", http.MethodGet, "/v2/nothing", "", nil, 404, errs.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body, tt.header)
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decodeError(t, resp)
			assert.Equal(t, tt.code, e.Error)
			assert.NotEmpty(t, e.Message)
			assert.NotEmpty(t, e.RequestID)
		})
	}
}

func TestDecodeOptionsTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"unset", "", pipeline.DefaultTimeout},
		{"short", `,"timeout":"5s"`, 5 * time.Second},
		{"capped", `,"timeout":"1h"`, pipeline.DefaultTimeout},
		{"negative", `,"timeout":"-1s"`, -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/v1/layout", strings.NewReader(`{"words":[{"word":"a","count":1}]`+tt.timeout+`}`))
			opts, err := decodeOptions(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(opts.Timeout))

			err = opts.ValidateForLayout()
			if tt.want < 0 {
				assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "negative timeout must be rejected, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSeedZeroIsKept(t *testing.T) {
	srv := newTestServer(t)

	zero := strings.Replace(body, `"seed": 7`, `"seed": 0`, 1)
	resp := do(t, http.MethodPost, srv.URL+"/v1/layout", zero, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created layoutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, uint64(0), created.Layout.Seed)

	def := strings.Replace(body, `"seed": 7`, `"seed": `+strconv.FormatUint(pipeline.DefaultSeed, 10), 1)
	resp = do(t, http.MethodPost, srv.URL+"/v1/layout", def, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get(headerCache), "the default seed must not reuse the seed 0 layout")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodDelete, srv.URL+"/v1/layout", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t)
	big := `{"exclude": ["` + strings.Repeat("x", MaxBodyBytes) + `"]}`
	resp := do(t, http.MethodPost, srv.URL+"/v1/layout", big, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errs.ErrCodeInvalidInput, decodeError(t, resp).Error)
}
