// Package cdptest provides an in-process fake of the CDP data gateway and a
// recording secondary provider for exercising the client in tests.
package cdptest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// BasePath is where the fake mounts the gateway, mirroring the hosted one.
const BasePath = "/gateway/data-gateway/"

// Gateway paths, relative to BasePath.
const (
	PathPing           = "v1/health/ping"
	PathIdentify       = "v1/persons/identify"
	PathTrack          = "v1/persons/track"
	PathRegisterDevice = "v1/persons/registerDevice"
	PathSendEmail      = "v1/send/email"
	PathSendPush       = "v1/send/push"
	PathSendSms        = "v1/send/sms"
)

// Request is one call received by the fake gateway.
type Request struct {
	Method    string
	Path      string
	Header    http.Header
	RawBody   []byte
	Body      map[string]any
	RequestID string
}

// Response is what the fake answers with. An empty Body writes no body.
type Response struct {
	Status int
	Body   string
}

// Responder computes the answer for a request.
type Responder func(Request) Response

// Gateway is a fake CDP gateway. Every route answers 200 {"ok":true} until
// told otherwise.
type Gateway struct {
	srv *httptest.Server

	log *zap.Logger

	mu         sync.Mutex
	requests   []Request
	responders map[string]Responder
}

// NewGateway starts a fake gateway that is shut down when the test ends.
func NewGateway(t testing.TB) *Gateway {
	t.Helper()
	g := &Gateway{
		log:        zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)),
		responders: make(map[string]Responder),
	}
	g.srv = httptest.NewServer(g.router())
	t.Cleanup(g.srv.Close)
	return g
}

func (g *Gateway) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)

	r.Route(strings.TrimSuffix(BasePath, "/"), func(r chi.Router) {
		r.Get("/"+PathPing, g.handle(PathPing))
		r.Post("/"+PathIdentify, g.handle(PathIdentify))
		r.Post("/"+PathTrack, g.handle(PathTrack))
		r.Post("/"+PathRegisterDevice, g.handle(PathRegisterDevice))
		r.Post("/"+PathSendEmail, g.handle(PathSendEmail))
		r.Post("/"+PathSendPush, g.handle(PathSendPush))
		r.Post("/"+PathSendSms, g.handle(PathSendSms))
	})
	return r
}

func (g *Gateway) handle(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := Request{
			Method:    r.Method,
			Path:      path,
			Header:    r.Header.Clone(),
			RawBody:   raw,
			RequestID: chimw.GetReqID(r.Context()),
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}

		g.mu.Lock()
		g.requests = append(g.requests, req)
		seq := len(g.requests)
		responder := g.responders[path]
		g.mu.Unlock()

		resp := Response{Status: http.StatusOK, Body: `{"ok":true}`}
		if responder != nil {
			resp = responder(req)
		}

		g.log.Debug("fake gateway call",
			zap.Int("seq", seq),
			zap.String("route", path),
			zap.Bool("scripted", responder != nil),
			zap.Int("payload_bytes", len(raw)),
			zap.Int("status", resp.Status),
			zap.String("request_id", req.RequestID),
		)

		w.Header().Set("X-Request-Id", req.RequestID)
		if resp.Body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.Status)
		if resp.Body != "" {
			_, _ = io.WriteString(w, resp.Body)
		}
	}
}

// URL is the gateway base URL to configure the client with.
func (g *Gateway) URL() string { return g.srv.URL + BasePath }

// Respond makes path answer with a fixed status and body.
func (g *Gateway) Respond(path string, status int, body string) {
	g.RespondFunc(path, func(Request) Response { return Response{Status: status, Body: body} })
}

func (g *Gateway) RespondFunc(path string, fn Responder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responders[path] = fn
}

// Requests returns a copy of everything received so far, in arrival order.
func (g *Gateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Request, len(g.requests))
	copy(out, g.requests)
	return out
}

// Count returns how many requests hit path.
func (g *Gateway) Count(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, r := range g.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request.
func (g *Gateway) Last() (Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return Request{}, false
	}
	return g.requests[len(g.requests)-1], true
}

// Close stops the server early, e.g. to simulate an unreachable gateway.
func (g *Gateway) Close() { g.srv.Close() }
