// internal/httpserver/routes_sessions.go
//
// HTTP routes that drive puzzle sessions:
//   - POST   /sessions               → start a session (today's puzzle or a given date)
//   - GET    /sessions/{id}          → current snapshot
//   - POST   /sessions/{id}/toggle   → select / deselect one word
//   - POST   /sessions/{id}/shuffle  → reorder the remaining words
//   - POST   /sessions/{id}/submit   → judge the four selected words
//   - POST   /sessions/{id}/reveal   → give up and show every group (ends solved)
//   - POST   /sessions/{id}/resign   → give up without revealing (ends failed)
//   - GET    /sessions/{id}/result   → summary, once the session has ended
//   - DELETE /sessions/{id}          → drop the session from memory
//
// Only the player who started a session can see or drive it.
// Sessions live in the in-memory store. When a session reaches a terminal
// state its summary is written to the results table exactly once.

package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/daily"
	"github.com/robalobadob/connections/internal/game"
	"github.com/robalobadob/connections/internal/store"
)

func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/result", s.handleResult)
			r.Post("/toggle", s.handleToggle)
			r.Post("/shuffle", s.apply(func(sess *game.Session) (game.Outcome, error) {
				sess.Shuffle()
				return "", nil
			}))
			r.Post("/submit", s.apply(func(sess *game.Session) (game.Outcome, error) {
				return sess.Submit()
			}))
			r.Post("/reveal", s.apply(func(sess *game.Session) (game.Outcome, error) {
				sess.Reveal()
				return "", nil
			}))
			r.Post("/resign", s.apply(func(sess *game.Session) (game.Outcome, error) {
				sess.Resign()
				return "", nil
			}))
		})
	})
}

// createReq is the payload for POST /sessions. Both fields are optional.
type createReq struct {
	Date      string `json:"date"`
	Unlimited bool   `json:"unlimited"`
}

// sessionRes wraps a snapshot with the outcome of the operation that produced it.
type sessionRes struct {
	Outcome game.Outcome  `json:"outcome,omitempty"`
	Played  bool          `json:"played,omitempty"` // player already finished this date before
	Session game.Snapshot `json:"session"`
}

// handleCreate starts a new session.
// An empty date picks the puzzle of the day.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pid := s.playerID(w, r)

	var p game.Puzzle
	if date := strings.TrimSpace(req.Date); date == "" {
		p = s.catalog.Daily(s.opts.Clock.Now(), s.opts.DailySalt)
	} else {
		var err error
		if p, err = s.catalog.Get(date); err != nil {
			writeError(w, err)
			return
		}
	}

	mode := game.ModeNormal
	if req.Unlimited {
		mode = game.ModeUnlimited
	}
	sess, err := game.New(p, mode, s.opts.NewRand(), s.opts.Clock)
	if err != nil {
		writeError(w, err)
		return
	}
	rec := &store.Record{Session: sess, PlayerID: pid, Unlimited: req.Unlimited, Touched: s.opts.Clock.Now()}
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}

	played := false
	if s.results != nil {
		ok, err := s.results.AlreadyPlayed(r.Context(), pid, p.Date)
		if err != nil {
			log.Warn().Err(err).Str("player", pid).Str("date", p.Date).Msg("check already played")
		}
		played = ok
	}

	log.Info().
		Str("session", sess.ID).
		Str("player", pid).
		Str("date", p.Date).
		Str("mode", string(mode)).
		Msg("session started")
	writeJSON(w, http.StatusCreated, sessionRes{Played: played, Session: sess.Snapshot()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	err := s.store.View(r.Context(), chi.URLParam(r, "id"), owned(s.playerID(w, r), func(rec *store.Record) error {
		snap = rec.Session.Snapshot()
		return nil
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionRes{Session: snap})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.View(r.Context(), id, owned(s.playerID(w, r), func(*store.Record) error {
		return nil
	})); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleReq struct {
	Word string `json:"word"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	word := strings.TrimSpace(req.Word)
	s.apply(func(sess *game.Session) (game.Outcome, error) {
		return "", sess.Toggle(word)
	})(w, r)
}

// handleResult returns the summary of a finished session.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	var res game.Result
	err := s.store.View(r.Context(), chi.URLParam(r, "id"), owned(s.playerID(w, r), func(rec *store.Record) error {
		if !rec.Session.State().Terminal() {
			return errSessionActive
		}
		var err error
		res, err = game.Summarize(rec.Session)
		return err
	}))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// owned runs fn only when the record belongs to pid. Other players get
// ErrNotFound, the same answer as for an unknown ID.
func owned(pid string, fn func(*store.Record) error) func(*store.Record) error {
	return func(rec *store.Record) error {
		if rec.PlayerID != pid {
			return store.ErrNotFound
		}
		return fn(rec)
	}
}

// apply runs op against the caller's session named in the URL under the
// store's exclusive lock. If op ended the session its result is recorded
// once. The reply carries the fresh snapshot.
func (s *Server) apply(op func(*game.Session) (game.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			out     game.Outcome
			snap    game.Snapshot
			pending *daily.Result
		)
		id := chi.URLParam(r, "id")
		err := s.store.Update(r.Context(), id, owned(s.playerID(w, r), func(rec *store.Record) error {
			var err error
			if out, err = op(rec.Session); err != nil {
				return err
			}
			rec.Touched = s.opts.Clock.Now()
			snap = rec.Session.Snapshot()
			if !snap.State.Terminal() || rec.Recorded {
				return nil
			}
			rec.Recorded = true
			sum, err := game.Summarize(rec.Session)
			if err != nil {
				log.Warn().Err(err).Str("session", id).Msg("summarize finished session")
				return nil
			}
			row := daily.ResultFrom(id, rec.PlayerID, rec.Unlimited, sum)
			pending = &row
			return nil
		}))
		if err != nil {
			writeError(w, err)
			return
		}
		if pending != nil {
			s.record(r.Context(), *pending)
		}
		writeJSON(w, http.StatusOK, sessionRes{Outcome: out, Session: snap})
	}
}

// record persists a finished session when tracking is enabled.
// Failures are logged; the player still gets their response.
func (s *Server) record(ctx context.Context, row daily.Result) {
	msg := "session finished"
	if s.opts.TrackCompleted && s.results != nil {
		if err := s.results.InsertResult(ctx, row); err != nil {
			log.Warn().Err(err).Str("session", row.SessionID).Msg("record result")
			return
		}
		msg = "session finished and recorded"
	}
	log.Info().
		Str("session", row.SessionID).
		Str("player", row.PlayerID).
		Str("date", row.Date).
		Bool("solved", row.Solved).
		Int("mistakes", row.Mistakes).
		Msg(msg)
}
