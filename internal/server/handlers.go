package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/buildinfo"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/session"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// =============================================================================
// Requests
// =============================================================================

// boardRequest names a board inline or by URL, with layout overrides.
type boardRequest struct {
	Board    *board.Board   `json:"board,omitempty"`
	URL      string         `json:"url,omitempty"`
	Settings board.Settings `json:"settings,omitempty"`
	Refresh  bool           `json:"refresh,omitempty"`
}

type renderRequest struct {
	boardRequest
	Theme  string  `json:"theme,omitempty"`
	Labels *bool   `json:"labels,omitempty"`
	Guides *bool   `json:"guides,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

type sessionRequest struct {
	boardRequest
	Viewport    *virtual.Viewport `json:"viewport,omitempty"`
	CacheLength float64           `json:"cache_length,omitempty"`
}

type viewportRequest struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Offset float64 `json:"offset"`
}

type changesRequest struct {
	Mutations []virtual.Mutation `json:"mutations"`
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

type layoutResponse struct {
	Layout    board.Layout `json:"layout"`
	BoardHash string       `json:"board_hash"`
	Cached    bool         `json:"cached"`
}

func (req boardRequest) options(s *Server) (pipeline.Options, error) {
	if req.Board == nil && req.URL == "" {
		return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "board or url is required")
	}
	if req.Board != nil && req.URL != "" {
		return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "send either board or url, not both")
	}
	if req.URL != "" {
		if err := errs.ValidateURL(req.URL); err != nil {
			return pipeline.Options{}, err
		}
	}
	return pipeline.Options{
		Board:    req.Board,
		Input:    req.URL,
		Refresh:  req.Refresh,
		Settings: req.Settings,
		Defaults: s.cfg.Defaults,
		Theme:    s.cfg.Theme,
		Labels:   s.cfg.Labels,
		Guides:   s.cfg.Guides,
		Scale:    s.cfg.Scale,
		Logger:   s.logger,
	}, nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := req.options(s)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	b, err := s.runner.Load(ctx, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, hit, err := s.runner.LayoutWithCacheInfo(ctx, b, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Layout: l, BoardHash: pipeline.HashBoard(b), Cached: hit})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	var req renderRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := req.options(s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	if req.Theme != "" {
		opts.Theme = req.Theme
	}
	if req.Labels != nil {
		opts.Labels = *req.Labels
	}
	if req.Guides != nil {
		opts.Guides = *req.Guides
	}
	if req.Scale != 0 {
		opts.Scale = req.Scale
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data := res.Artifacts[format]
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Board-Hash", res.BoardHash)
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := req.options(s)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	b, err := s.runner.Load(ctx, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cfg := session.Config{
		Settings:    req.Settings.Merge(b.Layout).Merge(s.cfg.Defaults),
		Viewport:    s.cfg.Viewport,
		CacheLength: s.cfg.CacheLength,
	}
	if req.Viewport != nil {
		cfg.Viewport = *req.Viewport
	}
	if req.CacheLength > 0 {
		cfg.CacheLength = req.CacheLength
	}

	sess, view, err := s.sessions.Create(ctx, b, cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cfg.Viewport.Offset > 0 {
		if view, err = sess.Scroll(ctx, cfg.Viewport.Offset); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.Header().Set("Location", "/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, view)
}

// withSession resolves the {id} parameter and calls fn with the session.
func (s *Server) withSession(fn sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		fn(w, r, sess)
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	respondView(w, r)(sess.View(r.Context()))
}

func (s *Server) handleSessionLayout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	l, err := sess.Snapshot()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req viewportRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		writeError(w, r, errs.New(errs.ErrCodeInvalidOptions, "viewport must not be negative"))
		return
	}
	respondView(w, r)(sess.SetViewport(r.Context(), req.Width, req.Height, req.Offset))
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req changesRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Mutations) == 0 {
		writeError(w, r, errs.New(errs.ErrCodeInvalidChange, "no mutations"))
		return
	}
	respondView(w, r)(sess.Apply(r.Context(), req.Mutations))
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var settings board.Settings
	if err := decode(w, r, s.cfg.MaxBodyBytes, &settings); err != nil {
		writeError(w, r, err)
		return
	}
	respondView(w, r)(sess.SetSettings(r.Context(), settings))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondView(w http.ResponseWriter, r *http.Request) func(session.View, error) {
	return func(v session.View, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
