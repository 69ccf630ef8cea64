// internal/httpserver/routes_daily.go
//
// HTTP routes for the puzzle catalog and the results store:
//   - GET /puzzles        → catalog overview (count, dates, range)
//   - GET /puzzles/today  → date of the puzzle of the day
//   - GET /puzzles/random → a random catalog date (unlimited practice)
//   - GET /stats/me       → caller's played / won / win rate (SHOW_STATS)
//   - GET /leaderboard    → fastest solves for a date (default today)
//
// Puzzle-of-the-day selection is deterministic from date + salt (internal/daily).

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/connections/internal/daily"
)

// errStatsDisabled is returned by /stats/me when SHOW_STATS is off.
var errStatsDisabled = errors.New("stats are disabled")

// mountDaily registers catalog, stats and leaderboard routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/puzzles", func(r chi.Router) {
		r.Get("/", s.handleCatalog)
		r.Get("/today", s.handleToday)
		r.Get("/random", s.handleRandom)
	})
	r.Get("/stats/me", s.handleStats)
	r.Get("/leaderboard", s.handleLeaderboard)
}

// todayDate returns the date of the puzzle of the day.
func (s *Server) todayDate() string {
	return s.catalog.Daily(s.opts.Clock.Now(), s.opts.DailySalt).Date
}

// catalogRes is returned by /puzzles.
type catalogRes struct {
	Count    int      `json:"count"`
	Dates    []string `json:"dates"`
	Earliest string   `json:"earliest"`
	Latest   string   `json:"latest"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogRes{
		Count:    s.catalog.Len(),
		Dates:    s.catalog.Dates(),
		Earliest: s.catalog.Earliest(),
		Latest:   s.catalog.Latest(),
	})
}

type dateRes struct {
	Date string `json:"date"`
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dateRes{Date: s.todayDate()})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dateRes{Date: s.catalog.Random(s.opts.NewRand())})
}

// handleStats returns the caller's lifetime stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.opts.ShowStats || s.results == nil {
		writeError(w, errStatsDisabled)
		return
	}
	st, err := s.results.Stats(r.Context(), s.playerID(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// lbRes is returned by /leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.todayDate()
	}
	if s.results == nil {
		writeJSON(w, http.StatusOK, lbRes{Date: date, Top: []daily.LBRow{}})
		return
	}
	rows, err := s.results.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
