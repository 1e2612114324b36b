package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/board"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/session"
	"github.com/matzehuels/masonry/pkg/virtual"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sessions := session.NewManager(time.Minute, nil)
	t.Cleanup(func() { sessions.Close() })
	s := New(pipeline.NewRunner(nil, nil, nil), sessions, nil, Config{
		Defaults: board.Settings{DesiredColumnWidth: 100, Width: 300},
		Viewport: virtual.Viewport{Width: 300, Height: 200},
		Theme:    "light",
		Labels:   true,
		Scale:    1,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func gridBoard(n int) *board.Board {
	b := &board.Board{Name: "grid"}
	for i := 0; i < n; i++ {
		b.Tiles = append(b.Tiles, board.Tile{ID: fmt.Sprintf("t%d", i), Height: 100})
	}
	return b
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		var e errorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		t.Fatalf("status = %d, want %d (%s: %s)", resp.StatusCode, want, e.Error.Code, e.Error.Message)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if _, err := uuid.Parse(resp.Header.Get(headerRequestID)); err != nil {
		t.Errorf("missing request id header: %q", resp.Header.Get(headerRequestID))
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(headerRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(headerRequestID); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	req := boardRequest{Board: gridBoard(6)}

	resp := do(t, http.MethodPost, ts.URL+"/v1/layout", req)
	expectStatus(t, resp, http.StatusOK)
	first := decodeBody[layoutResponse](t, resp)
	if first.Layout.Columns != 3 || len(first.Layout.Placements) != 6 || first.Layout.Height != 200 {
		t.Errorf("layout = %d columns, %d placements, height %v",
			first.Layout.Columns, len(first.Layout.Placements), first.Layout.Height)
	}
	if first.BoardHash == "" || first.Cached {
		t.Errorf("hash %q cached %v", first.BoardHash, first.Cached)
	}

	req.Settings = board.Settings{DesiredColumnWidth: 150}
	resp = do(t, http.MethodPost, ts.URL+"/v1/layout", req)
	expectStatus(t, resp, http.StatusOK)
	if l := decodeBody[layoutResponse](t, resp).Layout; l.Columns != 2 {
		t.Errorf("override gave %d columns, want 2", l.Columns)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body any
		code errs.Code
		want int
	}{
		{"empty body", "", errs.ErrCodeInvalidInput, http.StatusBadRequest},
		{"no board", boardRequest{}, errs.ErrCodeInvalidInput, http.StatusBadRequest},
		{"unknown field", `{"board":{"tiles":[]},"bogus":1}`, errs.ErrCodeInvalidInput, http.StatusBadRequest},
		{"both sources", boardRequest{Board: gridBoard(1), URL: "https://example.com/b.json"}, errs.ErrCodeInvalidInput, http.StatusBadRequest},
		{"duplicate ids", `{"board":{"tiles":[{"id":"a","height":1},{"id":"a","height":1}]}}`, errs.ErrCodeInvalidBoard, http.StatusBadRequest},
		{"bad stretch", boardRequest{Board: gridBoard(1), Settings: board.Settings{Stretch: "sideways"}}, errs.ErrCodeInvalidStretch, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/v1/layout", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			e := decodeBody[errorBody](t, resp)
			if e.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Error.Code, tt.code, e.Error.Message)
			}
			if e.RequestID == "" {
				t.Error("error body lacks a request id")
			}
		})
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)
	req := renderRequest{boardRequest: boardRequest{Board: gridBoard(4)}}

	resp := do(t, http.MethodPost, ts.URL+"/v1/render/svg", req)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "miss" || resp.Header.Get("X-Board-Hash") == "" {
		t.Errorf("headers = %v", resp.Header)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "<svg") || !strings.Contains(buf.String(), `id="tile-t3"`) {
		t.Errorf("body is not the board SVG:\n%s", buf.String())
	}

	resp = do(t, http.MethodPost, ts.URL+"/v1/render/JSON", req)
	expectStatus(t, resp, http.StatusOK)
	if l := decodeBody[board.Layout](t, resp); len(l.Placements) != 4 {
		t.Errorf("json render has %d placements", len(l.Placements))
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/v1/render/gif", renderRequest{boardRequest: boardRequest{Board: gridBoard(1)}})
	expectStatus(t, resp, http.StatusBadRequest)
	if e := decodeBody[errorBody](t, resp); e.Error.Code != errs.ErrCodeInvalidFormat {
		t.Errorf("code = %s", e.Error.Code)
	}

	req := renderRequest{boardRequest: boardRequest{Board: gridBoard(1)}, Theme: "neon"}
	resp = do(t, http.MethodPost, ts.URL+"/v1/render/svg", req)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/v1/sessions", sessionRequest{boardRequest: boardRequest{Board: gridBoard(30)}})
	expectStatus(t, resp, http.StatusCreated)
	view := decodeBody[session.View](t, resp)
	if view.Columns != 3 || view.Tiles != 30 || len(view.Placements) == 0 {
		t.Fatalf("view = %d columns, %d tiles, %d placements", view.Columns, view.Tiles, len(view.Placements))
	}
	loc := resp.Header.Get("Location")
	if loc != "/v1/sessions/"+view.ID {
		t.Errorf("Location = %q", loc)
	}
	base := ts.URL + loc

	resp = do(t, http.MethodGet, base, nil)
	expectStatus(t, resp, http.StatusOK)
	if v := decodeBody[session.View](t, resp); v.ID != view.ID {
		t.Errorf("GET returned session %q", v.ID)
	}

	resp = do(t, http.MethodPost, base+"/viewport", viewportRequest{Offset: 300})
	expectStatus(t, resp, http.StatusOK)
	v := decodeBody[session.View](t, resp)
	if v.Viewport.Offset != 300 {
		t.Errorf("offset = %v, want 300", v.Viewport.Offset)
	}
	// One viewport height of buffer, split above and below.
	for _, p := range v.Placements {
		if p.Y+p.Height < 200 || p.Y > 700 {
			t.Errorf("tile %s at y=%v lies outside the realization region", p.ID, p.Y)
		}
	}

	resp = do(t, http.MethodPost, base+"/changes", changesRequest{Mutations: []virtual.Mutation{
		{Action: "insert", Index: 0, Tiles: []board.Tile{{ID: "new", Height: 50}}},
	}})
	expectStatus(t, resp, http.StatusOK)
	if v := decodeBody[session.View](t, resp); v.Tiles != 31 {
		t.Errorf("tiles = %d after insert, want 31", v.Tiles)
	}

	resp = do(t, http.MethodPatch, base+"/options", board.Settings{DesiredColumnWidth: 150})
	expectStatus(t, resp, http.StatusOK)
	if v := decodeBody[session.View](t, resp); v.Columns != 2 {
		t.Errorf("columns = %d after options, want 2", v.Columns)
	}

	resp = do(t, http.MethodPatch, base+"/options", board.Settings{ColumnSpacing: 10})
	expectStatus(t, resp, http.StatusOK)
	if v := decodeBody[session.View](t, resp); v.Columns != 1 {
		t.Errorf("columns = %d after spacing, want 1", v.Columns)
	}

	resp = do(t, http.MethodGet, base+"/layout", nil)
	expectStatus(t, resp, http.StatusOK)
	if l := decodeBody[board.Layout](t, resp); l.Board != "grid" || len(l.Placements) == 0 {
		t.Errorf("snapshot = %q with %d placements", l.Board, len(l.Placements))
	}

	resp = do(t, http.MethodDelete, base, nil)
	expectStatus(t, resp, http.StatusNoContent)

	resp = do(t, http.MethodGet, base, nil)
	expectStatus(t, resp, http.StatusNotFound)
	if e := decodeBody[errorBody](t, resp); e.Error.Code != errs.ErrCodeSessionNotFound {
		t.Errorf("code = %s", e.Error.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/v1/sessions", sessionRequest{boardRequest: boardRequest{Board: gridBoard(5)}})
	expectStatus(t, resp, http.StatusCreated)
	base := ts.URL + resp.Header.Get("Location")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
		code   errs.Code
	}{
		{"unknown session", http.MethodGet, ts.URL + "/v1/sessions/" + uuid.NewString(), nil, http.StatusNotFound, errs.ErrCodeSessionNotFound},
		{"malformed id", http.MethodGet, ts.URL + "/v1/sessions/nope", nil, http.StatusNotFound, errs.ErrCodeSessionNotFound},
		{"no mutations", http.MethodPost, base + "/changes", changesRequest{}, http.StatusBadRequest, errs.ErrCodeInvalidChange},
		{"bad mutation", http.MethodPost, base + "/changes", changesRequest{Mutations: []virtual.Mutation{{Action: "remove", Index: 9}}}, http.StatusBadRequest, errs.ErrCodeInvalidChange},
		{"unknown action", http.MethodPost, base + "/changes", changesRequest{Mutations: []virtual.Mutation{{Action: "shuffle"}}}, http.StatusBadRequest, errs.ErrCodeInvalidChange},
		{"negative viewport", http.MethodPost, base + "/viewport", viewportRequest{Width: -1}, http.StatusBadRequest, errs.ErrCodeInvalidOptions},
		{"bad stretch", http.MethodPatch, base + "/options", board.Settings{Stretch: "sideways"}, http.StatusBadRequest, errs.ErrCodeInvalidStretch},
		{"no route", http.MethodGet, ts.URL + "/v2/nothing", nil, http.StatusNotFound, errs.ErrCodeNotFound},
		{"wrong method", http.MethodPut, base + "/options", nil, http.StatusMethodNotAllowed, errs.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if e := decodeBody[errorBody](t, resp); e.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Error.Code, tt.code)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errs.Code
		want int
	}{
		{errs.ErrCodeInvalidBoard, http.StatusBadRequest},
		{errs.ErrCodeInvalidPath, http.StatusBadRequest},
		{errs.ErrCodeNotFound, http.StatusNotFound},
		{errs.ErrCodeSessionExpired, http.StatusGone},
		{errs.ErrCodeRateLimited, http.StatusTooManyRequests},
		{errs.ErrCodeNetwork, http.StatusBadGateway},
		{errs.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errs.ErrCodeUnsupported, http.StatusNotImplemented},
		{errs.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := statusFor(tt.code); got != tt.want {
				t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestWriteErrorRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(rec, req, &errs.RateLimitedError{RetryAfter: 12})
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "12" {
		t.Errorf("status %d, Retry-After %q", rec.Code, rec.Header().Get("Retry-After"))
	}

	rec = httptest.NewRecorder()
	writeError(rec, req, fmt.Errorf("disk on fire"))
	var e errorBody
	_ = json.NewDecoder(rec.Body).Decode(&e)
	if rec.Code != http.StatusInternalServerError || e.Error.Message != "internal error" {
		t.Errorf("unclassified error leaked: %d %+v", rec.Code, e)
	}
}
