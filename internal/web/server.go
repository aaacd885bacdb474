// Package web provides the HTTP status server and the period control
// endpoint.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sweeney/pin-blinker/internal/logger"
	"github.com/sweeney/pin-blinker/internal/state"
	"github.com/sweeney/pin-blinker/internal/status"
)

// maxBody bounds the /period request body.
const maxBody = 1 << 10

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// PeriodJSON is the request and response body of /period.
type PeriodJSON struct {
	PeriodMs int `json:"period_ms"`
}

// errorJSON is the body of a rejected request.
type errorJSON struct {
	Error string `json:"error"`
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/period", s.handlePeriod)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on ln. It blocks until the server is shut down.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		logger.Warnf(r.Context(), "render status page: %v", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handlePeriod reports the toggle period on GET and replaces it on PUT or
// POST. The value comes from ?ms=N or a JSON body {"period_ms": N}.
// Out-of-range values are rejected with 400 and the period is unchanged.
func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	shared := s.tracker.Shared()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, PeriodJSON{PeriodMs: int(shared.PeriodMs())})

	case http.MethodPut, http.MethodPost:
		ms, err := parsePeriod(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
			return
		}

		old := shared.PeriodMs()
		if err := shared.SetPeriod(ms); err != nil {
			if !errors.Is(err, state.ErrPeriodOutOfRange) {
				writeJSON(w, http.StatusInternalServerError, errorJSON{Error: err.Error()})
				return
			}
			logger.WarnKV(r.Context(), "period update rejected", "period_ms", ms, "remote", r.RemoteAddr)
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
			return
		}

		logger.InfoKV(r.Context(), "period updated", "from_ms", old, "to_ms", ms, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusOK, PeriodJSON{PeriodMs: ms})

	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorJSON{Error: "method not allowed"})
	}
}

func parsePeriod(r *http.Request) (int, error) {
	if q := r.URL.Query().Get("ms"); q != "" {
		ms, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return 0, fmt.Errorf("invalid ms %q", q)
		}
		return ms, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return 0, errors.New("missing period: use ?ms=N or {\"period_ms\": N}")
	}

	var req PeriodJSON
	if err := json.Unmarshal(body, &req); err != nil {
		return 0, fmt.Errorf("decode body: %w", err)
	}
	return req.PeriodMs, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
