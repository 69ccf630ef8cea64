// internal/httpserver/server.go
//
// HTTP server wiring for the Connections backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health".
//   - Player identity: POST /players issues a token; other routes use optional auth
//     with an anonymous cookie fallback (players.go).
//   - Session endpoints that drive the rules engine (routes_sessions.go).
//   - Puzzle catalog, stats and leaderboard endpoints (routes_daily.go).
//
// Notes:
//   - The server never renders a board; it returns snapshots for a client to draw.
//   - Errors are JSON bodies {"error": "<code>", "message": "..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/daily"
	"github.com/robalobadob/connections/internal/game"
	"github.com/robalobadob/connections/internal/puzzles"
	"github.com/robalobadob/connections/internal/store"
)

// Options carries the tunables the server needs from config.
type Options struct {
	DailySalt      string
	JWTSecret      string
	JWTExpiry      time.Duration
	TrackCompleted bool
	ShowStats      bool
	ClientOrigin   string

	// SessionTTL is how long a finished session stays readable after its
	// last move; IdleTTL drops sessions nobody has touched in that long.
	SessionTTL    time.Duration
	IdleTTL       time.Duration
	SweepInterval time.Duration

	// Clock drives session timing, "today" and token expiry. Nil → wall clock.
	Clock game.Clock
	// NewRand returns the random source for a new session or a random date pick.
	// Nil → time-seeded PCG.
	NewRand func() *rand.Rand
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Server bundles router, live session store, results store and puzzle catalog.
type Server struct {
	r       *chi.Mux
	store   store.Store
	results *daily.Store
	catalog *puzzles.Catalog
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, results *daily.Store, catalog *puzzles.Catalog, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = wallClock{}
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
		}
	}
	if opts.JWTExpiry <= 0 {
		opts.JWTExpiry = 14 * 24 * time.Hour
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 24 * time.Hour
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), store: st, results: results, catalog: catalog, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "connections",
			"endpoints": []string{"/health", "POST /players", "/puzzles", "POST /sessions", "/sessions/{id}", "/stats/me", "/leaderboard"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
	})

	s.r.Post("/players", s.handleNewPlayer)

	// Everything else accepts guests; a valid token just names the player.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountSessions(r)
		s.mountDaily(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// ServeHTTP lets the Server be mounted directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
// Expired sessions are swept every SweepInterval while it runs.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.sweepLoop(ctx)

	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	t := time.NewTicker(s.opts.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

// sweep drops finished sessions older than SessionTTL and any session idle
// for IdleTTL. Results are already in the database by the time a session
// is terminal, so nothing is lost.
func (s *Server) sweep(ctx context.Context) int {
	now := s.opts.Clock.Now()
	n := s.store.Prune(ctx, func(rec *store.Record) bool {
		idle := now.Sub(rec.Touched)
		if rec.Session.State().Terminal() {
			return idle >= s.opts.SessionTTL
		}
		return idle >= s.opts.IdleTTL
	})
	if n > 0 {
		log.Debug().Int("pruned", n).Int("live", s.store.Len()).Msg("session sweep")
	}
	return n
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one debug line per request with status and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Debug().
				Str("reqId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------ responses ----------------------------------

// errSessionActive is returned when a result is requested before the end.
var errSessionActive = errors.New("session is still in progress")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError maps domain errors onto HTTP statuses and stable error codes.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, puzzles.ErrNoPuzzle):
		status, code = http.StatusNotFound, "no_puzzle"
	case errors.Is(err, game.ErrInvalidWord):
		status, code = http.StatusBadRequest, "invalid_word"
	case errors.Is(err, game.ErrIncompleteSelection):
		status, code = http.StatusBadRequest, "incomplete_selection"
	case errors.Is(err, errBadJSON):
		status, code = http.StatusBadRequest, "bad_json"
	case errors.Is(err, errSessionActive):
		status, code = http.StatusConflict, "session_active"
	case errors.Is(err, errStatsDisabled):
		status, code = http.StatusNotFound, "stats_disabled"
	default:
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": code, "message": err.Error()})
}

var errBadJSON = errors.New("malformed request body")

// decode reads an optional JSON body into v; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(errBadJSON, err)
	}
	return nil
}
