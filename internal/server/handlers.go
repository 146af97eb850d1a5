package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/wordcloud/pkg/buildinfo"
	"github.com/matzehuels/wordcloud/pkg/cache"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	errs "github.com/matzehuels/wordcloud/pkg/errors"
	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

// handlerFunc is an http.HandlerFunc that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type errorResponse struct {
	Error     errs.Code `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// handle adapts h and writes any returned error as JSON. Errors without a
// code are reported as internal errors and their text is not exposed.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		status := errs.HTTPStatus(err)
		resp := errorResponse{
			Error:     errs.GetCode(err),
			Message:   errs.UserMessage(err),
			RequestID: RequestID(r.Context()),
		}
		if resp.Error == "" {
			resp.Error = errs.ErrCodeInternal
			resp.Message = http.StatusText(http.StatusInternalServerError)
		}

		if status >= 500 {
			s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err, "request_id", resp.RequestID)
		} else {
			s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err, "request_id", resp.RequestID)
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func notFound(http.ResponseWriter, *http.Request) error {
	return errs.New(errs.ErrCodeNotFound, "no such route")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Error:     errs.ErrCodeUnsupported,
		Message:   fmt.Sprintf("method %s not allowed", r.Method),
		RequestID: RequestID(r.Context()),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
	return nil
}

// =============================================================================
// Layouts
// =============================================================================

type layoutStats struct {
	Words    int     `json:"words"`
	Placed   int     `json:"placed"`
	Dropped  int     `json:"dropped"`
	Coverage float64 `json:"coverage"`
	Millis   int64   `json:"layout_ms"`
}

type layoutResponse struct {
	ID         string         `json:"id"`
	LayoutHash string         `json:"layout_hash"`
	Cached     bool           `json:"cached"`
	Stats      layoutStats    `json:"stats"`
	Layout     *layout.Result `json:"layout"`
}

// storedLayout is what the server keeps under a layout id. The font is
// needed to re-rasterize the words when rendering PNG later.
type storedLayout struct {
	Font       string         `json:"font"`
	FontEngine string         `json:"font_engine"`
	Layout     *layout.Result `json:"layout"`
}

func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) error {
	opts, err := decodeOptions(r)
	if err != nil {
		return err
	}
	runner, tenant, err := s.runnerFor(r)
	if err != nil {
		return err
	}

	res, err := runner.Layout(r.Context(), opts)
	if err != nil {
		return err
	}

	// Layout applied defaults on its own copy; mirror the font defaults.
	opts.SetLayoutDefaults()
	id := uuid.NewString()
	data, err := json.Marshal(storedLayout{Font: opts.Font, FontEngine: opts.FontEngine, Layout: res.Layout})
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode layout")
	}
	if err := runner.Cache.Set(r.Context(), layoutIDKey(tenant, id), data, cache.TTLLayout); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "store layout")
	}

	setCacheHeader(w, res.CacheInfo.LayoutHit)
	w.Header().Set("Location", "/v1/layouts/"+id)
	writeJSON(w, http.StatusCreated, layoutResponse{
		ID:         id,
		LayoutHash: res.LayoutHash,
		Cached:     res.CacheInfo.LayoutHit,
		Stats: layoutStats{
			Words:    res.Stats.Words,
			Placed:   res.Stats.Placed,
			Dropped:  res.Stats.Dropped,
			Coverage: res.Layout.Coverage,
			Millis:   res.Stats.LayoutTime.Milliseconds(),
		},
		Layout: res.Layout,
	})
	return nil
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) error {
	_, tenant, err := s.runnerFor(r)
	if err != nil {
		return err
	}
	stored, err := s.loadLayout(r, tenant)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, stored.Layout)
	return nil
}

func (s *Server) renderLayout(w http.ResponseWriter, r *http.Request) error {
	runner, tenant, err := s.runnerFor(r)
	if err != nil {
		return err
	}
	stored, err := s.loadLayout(r, tenant)
	if err != nil {
		return err
	}

	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	opts, err := renderQuery(r)
	if err != nil {
		return err
	}
	opts.Font = stored.Font
	opts.FontEngine = stored.FontEngine
	opts.Formats = []string{format}

	artifacts, hit, err := runner.RenderWithCacheInfo(r.Context(), stored.Layout, opts)
	if err != nil {
		return err
	}
	setCacheHeader(w, hit)
	writeArtifact(w, format, artifacts[format])
	return nil
}

func (s *Server) loadLayout(r *http.Request, tenant string) (*storedLayout, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "malformed layout id %q", id)
	}
	data, hit, err := s.runner.Cache.Get(r.Context(), layoutIDKey(tenant, id))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read layout")
	}
	if !hit {
		return nil, errs.New(errs.ErrCodeNotFound, "layout %s not found or expired", id)
	}
	var stored storedLayout
	if err := json.Unmarshal(data, &stored); err != nil || stored.Layout == nil {
		return nil, errs.New(errs.ErrCodeInternal, "stored layout %s is corrupt", id)
	}
	return &stored, nil
}

// =============================================================================
// One-shot rendering
// =============================================================================

func (s *Server) render(w http.ResponseWriter, r *http.Request) error {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	opts, err := decodeOptions(r)
	if err != nil {
		return err
	}
	opts.Formats = []string{format}

	runner, _, err := s.runnerFor(r)
	if err != nil {
		return err
	}
	res, err := runner.Execute(r.Context(), opts)
	if err != nil {
		return err
	}
	setCacheHeader(w, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	w.Header().Set("X-Words-Placed", strconv.Itoa(res.Stats.Placed))
	w.Header().Set("X-Words-Dropped", strconv.Itoa(res.Stats.Dropped))
	writeArtifact(w, format, res.Artifacts[format])
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// runnerFor returns the runner for the request's tenant. Tenants share the
// backend but never each other's keys.
func (s *Server) runnerFor(r *http.Request) (*pipeline.Runner, string, error) {
	tenant := r.Header.Get(headerTenant)
	if tenant == "" {
		return s.runner, "", nil
	}
	if err := errs.ValidateCacheKey(tenant); err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid %s header", headerTenant)
	}
	scoped := *s.runner
	scoped.Keyer = cache.NewScopedKeyer(s.runner.Keyer, tenantPrefix(tenant))
	return &scoped, tenant, nil
}

func tenantPrefix(tenant string) string {
	return "tenant:" + tenant + ":"
}

func layoutIDKey(tenant, id string) string {
	key := "layoutid:" + id
	if tenant != "" {
		key = tenantPrefix(tenant) + key
	}
	return key
}

// decodeOptions reads pipeline options from the request body. Unknown
// fields are rejected so typos do not silently fall back to defaults.
func decodeOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return opts, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return opts, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	if opts.Timeout == 0 || opts.Timeout > pipeline.Duration(pipeline.DefaultTimeout) {
		opts.Timeout = pipeline.Duration(pipeline.DefaultTimeout)
	}
	return opts, nil
}

// renderQuery reads render options from the query string.
func renderQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Colors:     q.Get("colors"),
		Background: q.Get("background"),
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid scale %q", v)
		}
		opts.Scale = scale
	}
	if v := q.Get("embed_font"); v != "" {
		embed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid embed_font %q", v)
		}
		opts.EmbedFont = embed
	}
	return opts, nil
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json; charset=utf-8",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(headerCache, "HIT")
	} else {
		w.Header().Set(headerCache, "MISS")
	}
}
