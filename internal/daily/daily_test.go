package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connections/assets"
	"github.com/robalobadob/connections/internal/database"
	"github.com/robalobadob/connections/internal/game"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, "2024-06-11", DateKey(time.Date(2024, 6, 12, 5, 0, 0, 0, loc)))
	assert.Equal(t, "2024-06-12", DateKey(time.Date(2024, 6, 12, 23, 59, 0, 0, time.UTC)))
}

func TestPuzzleIndex(t *testing.T) {
	day := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)

	a := PuzzleIndex(day, "salt", 100)
	assert.Equal(t, a, PuzzleIndex(day.Add(10*time.Hour), "salt", 100), "same UTC day")
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 100)

	assert.Zero(t, PuzzleIndex(day, "salt", 0))
	assert.Zero(t, PuzzleIndex(day, "salt", 1))

	// long salts are accepted
	long := PuzzleIndex(day, string(make([]byte, 200)), 7)
	assert.Less(t, long, 7)

	// indices spread across a month rather than collapsing to one value
	seen := map[int]bool{}
	for d := 0; d < 30; d++ {
		seen[PuzzleIndex(day.AddDate(0, 0, d), "salt", 10)] = true
	}
	assert.Greater(t, len(seen), 3)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations()))
	return NewStore(db)
}

func TestResultFrom(t *testing.T) {
	r := game.Result{
		Date:     "2024-06-12",
		Solved:   true,
		Duration: 2500 * time.Millisecond,
		Attempts: []game.Attempt{
			{Outcome: game.OutcomeCorrect},
			{Outcome: game.OutcomeWrong},
			{Outcome: game.OutcomeCorrect},
			{Outcome: game.OutcomeCorrect},
			{Outcome: game.OutcomeCorrect},
		},
		Mistakes: 1,
		Share:    "🟨🟨🟨🟨",
	}
	got := ResultFrom("s1", "p1", false, r)
	assert.Equal(t, Result{
		SessionID:  "s1",
		PlayerID:   "p1",
		Date:       "2024-06-12",
		Solved:     true,
		Attempts:   5,
		Mistakes:   1,
		ElapsedMs:  2500,
		Transcript: "🟨🟨🟨🟨",
	}, got)

	// three of four groups by hand, the rest revealed
	r.Attempts = r.Attempts[:4]
	assert.True(t, ResultFrom("s1", "p1", false, r).Revealed)
	r.Solved = false
	assert.False(t, ResultFrom("s1", "p1", false, r).Revealed)
}

func TestStoreStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st, err := s.Stats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, Stats{Completed: []string{}}, st)

	rows := []Result{
		{SessionID: "a", PlayerID: "p1", Date: "2024-06-12", Solved: true, Attempts: 4, ElapsedMs: 1000},
		{SessionID: "b", PlayerID: "p1", Date: "2024-06-10", Solved: false, Attempts: 6, Mistakes: 4, ElapsedMs: 9000},
		{SessionID: "c", PlayerID: "p1", Date: "2024-06-12", Solved: true, Attempts: 5, Mistakes: 1, ElapsedMs: 3000},
		{SessionID: "d", PlayerID: "p2", Date: "2024-06-12", Solved: true, Attempts: 4, ElapsedMs: 500},
	}
	for _, r := range rows {
		require.NoError(t, s.InsertResult(ctx, r))
	}
	// duplicate session IDs are ignored
	require.NoError(t, s.InsertResult(ctx, rows[0]))

	st, err = s.Stats(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Played)
	assert.Equal(t, 2, st.Won)
	assert.InDelta(t, 66.666, st.WinRate, 0.01)
	assert.Equal(t, []string{"2024-06-10", "2024-06-12"}, st.Completed)

	played, err := s.AlreadyPlayed(ctx, "p2", "2024-06-12")
	require.NoError(t, err)
	assert.True(t, played)
	played, err = s.AlreadyPlayed(ctx, "p2", "2024-06-10")
	require.NoError(t, err)
	assert.False(t, played)
}

func TestStoreLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rows := []Result{
		{SessionID: "1", PlayerID: "slow", Date: "2024-06-12", Solved: true, Attempts: 4, ElapsedMs: 9000},
		{SessionID: "2", PlayerID: "fast", Date: "2024-06-12", Solved: true, Attempts: 5, Mistakes: 1, ElapsedMs: 2000},
		{SessionID: "3", PlayerID: "clean", Date: "2024-06-12", Solved: true, Attempts: 4, ElapsedMs: 2000},
		{SessionID: "4", PlayerID: "lost", Date: "2024-06-12", Solved: false, Attempts: 8, Mistakes: 4, ElapsedMs: 100},
		{SessionID: "5", PlayerID: "easy", Date: "2024-06-12", Solved: true, Unlimited: true, Attempts: 4, ElapsedMs: 10},
		{SessionID: "6", PlayerID: "other", Date: "2024-06-11", Solved: true, Attempts: 4, ElapsedMs: 10},
		{SessionID: "7", PlayerID: "quitter", Date: "2024-06-12", Solved: true, Revealed: true, Attempts: 1, ElapsedMs: 5},
	}
	for _, r := range rows {
		require.NoError(t, s.InsertResult(ctx, r))
	}

	top, err := s.Leaderboard(ctx, "2024-06-12", 0)
	require.NoError(t, err)
	ids := make([]string, len(top))
	for i, r := range top {
		ids[i] = r.PlayerID
	}
	assert.Equal(t, []string{"clean", "fast", "slow"}, ids)

	top, err = s.Leaderboard(ctx, "2024-06-12", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, LBRow{PlayerID: "clean", Attempts: 4, ElapsedMs: 2000}, top[0])
}
