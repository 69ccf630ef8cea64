// internal/daily/store.go
//
// SQLite-backed record of finished sessions.
// Responsibilities:
//   - Insert one row per finished session (idempotent on session ID).
//   - Per-player stats: played, won, win rate, dates completed.
//   - Per-date leaderboard of solved, normal-mode sessions.
//
// Schema lives in assets/sql and is applied by internal/database.

package daily

import (
	"context"
	"database/sql"

	"github.com/robalobadob/connections/internal/game"
)

// Result is one finished session as stored.
type Result struct {
	SessionID  string `json:"sessionId"`
	PlayerID   string `json:"playerId"`
	Date       string `json:"date"`
	Solved     bool   `json:"solved"`
	Unlimited  bool   `json:"unlimited"`
	Revealed   bool   `json:"revealed"`
	Attempts   int    `json:"attempts"`
	Mistakes   int    `json:"mistakes"`
	ElapsedMs  int64  `json:"elapsedMs"`
	Transcript string `json:"transcript"`
}

// ResultFrom flattens a game summary into a storable row.
// A solved session with fewer than four correct attempts was finished by Reveal.
func ResultFrom(sessionID, playerID string, unlimited bool, r game.Result) Result {
	correct := 0
	for _, a := range r.Attempts {
		if a.Outcome == game.OutcomeCorrect {
			correct++
		}
	}
	return Result{
		SessionID:  sessionID,
		PlayerID:   playerID,
		Date:       r.Date,
		Solved:     r.Solved,
		Unlimited:  unlimited,
		Revealed:   r.Solved && correct < game.GroupCount,
		Attempts:   len(r.Attempts),
		Mistakes:   r.Mistakes,
		ElapsedMs:  r.Duration.Milliseconds(),
		Transcript: r.Share,
	}
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InsertResult stores r. A second insert for the same session is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO results
            (session_id, player_id, date, solved, unlimited, revealed, attempts, mistakes, elapsed_ms, transcript)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.PlayerID, r.Date, r.Solved, r.Unlimited, r.Revealed, r.Attempts, r.Mistakes, r.ElapsedMs, r.Transcript,
	)
	return err
}

// AlreadyPlayed reports whether player has a finished session for date.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM results WHERE player_id=? AND date=?`,
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// Stats is a player's lifetime record.
type Stats struct {
	Played    int      `json:"played"`
	Won       int      `json:"won"`
	WinRate   float64  `json:"winRate"` // percent, 0 when nothing played
	Completed []string `json:"completed"`
}

// Stats aggregates every stored result for player.
func (s *Store) Stats(ctx context.Context, playerID string) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(solved), 0) FROM results WHERE player_id=?`,
		playerID,
	).Scan(&st.Played, &st.Won); err != nil {
		return Stats{}, err
	}
	if st.Played > 0 {
		st.WinRate = float64(st.Won) / float64(st.Played) * 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM results WHERE player_id=? ORDER BY date ASC`, playerID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	st.Completed = []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return Stats{}, err
		}
		st.Completed = append(st.Completed, d)
	}
	return st, rows.Err()
}

// LBRow is one leaderboard entry.
type LBRow struct {
	PlayerID  string `json:"playerId"`
	Attempts  int    `json:"attempts"`
	Mistakes  int    `json:"mistakes"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard returns the fastest solved normal-mode sessions for date,
// ties broken by fewer mistakes, then earlier finish. Revealed sessions
// are left out. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_id, attempts, mistakes, elapsed_ms
        FROM results
        WHERE date=? AND solved=1 AND unlimited=0 AND revealed=0
        ORDER BY elapsed_ms ASC, mistakes ASC, created_at ASC, id ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Attempts, &r.Mistakes, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
