package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeFailedRevealsAllCategories(t *testing.T) {
	s, clk := newTestSession(t, ModeNormal)
	for i := 0; i < DefaultMistakes; i++ {
		clk.Advance(2 * time.Second)
		selectAll(t, s, "Apple", "Red", "Big", "Fast")
		_, err := s.Submit()
		require.NoError(t, err)
	}
	require.Equal(t, StateFailed, s.State())

	res, err := Summarize(s)
	require.NoError(t, err)
	assert.False(t, res.Solved)
	assert.Equal(t, "2024-06-12", res.Date)
	assert.Equal(t, testPuzzle().Groups, res.FinalCategories)
	assert.Equal(t, 8*time.Second, res.Duration)
	assert.InDelta(t, 8.0, res.DurationSeconds, 1e-9)
	assert.Equal(t, DefaultMistakes, res.Mistakes)
	assert.Len(t, res.Attempts, DefaultMistakes)
	for _, row := range res.Transcript {
		assert.Equal(t, Row{MarkerMiss, MarkerMiss, MarkerMiss, MarkerMiss}, row)
	}
}

func TestSummarizeSolvedTranscript(t *testing.T) {
	s, _ := newTestSession(t, ModeNormal)
	plays := [][]string{
		{"Tall", "Big", "Wide", "Small"},   // Size
		{"Apple", "Pear", "Plum", "Red"},   // near miss
		{"Fig", "Plum", "Pear", "Apple"},   // Fruit
		{"Slow", "Fast", "Red", "Blue"},    // wrong
		{"Brisk", "Quick", "Slow", "Fast"}, // Speed
		{"Red", "Blue", "Green", "Gold"},   // Color
	}
	for _, p := range plays {
		selectAll(t, s, p...)
		_, err := s.Submit()
		require.NoError(t, err)
	}
	require.Equal(t, StateSolved, s.State())

	res, err := Summarize(s)
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.Equal(t, 2, res.Mistakes)
	assert.Equal(t, Transcript{
		{MarkerBlue, MarkerBlue, MarkerBlue, MarkerBlue},
		{MarkerMiss, MarkerMiss, MarkerMiss, MarkerMiss},
		{MarkerYellow, MarkerYellow, MarkerYellow, MarkerYellow},
		{MarkerMiss, MarkerMiss, MarkerMiss, MarkerMiss},
		{MarkerPurple, MarkerPurple, MarkerPurple, MarkerPurple},
		{MarkerGreen, MarkerGreen, MarkerGreen, MarkerGreen},
	}, res.Transcript)
	assert.Equal(t, "🟦🟦🟦🟦\n⬛⬛⬛⬛\n🟨🟨🟨🟨\n⬛⬛⬛⬛\n🟪🟪🟪🟪\n🟩🟩🟩🟩", res.Share)

	// canonical order, not solve order
	names := make([]string, len(res.FinalCategories))
	for i, c := range res.FinalCategories {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Fruit", "Color", "Size", "Speed"}, names)
}

func TestSummarizeIsReproducible(t *testing.T) {
	attempts := []Attempt{
		{Words: []string{"Apple", "Pear", "Plum", "Fig"}, Outcome: OutcomeCorrect, Group: "Fruit"},
		{Words: []string{"Red", "Big", "Fast", "Gold"}, Outcome: OutcomeWrong},
	}
	a, err := SummarizeLog(testPuzzle(), attempts, false, time.Minute)
	require.NoError(t, err)
	b, err := SummarizeLog(testPuzzle(), attempts, false, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "🟨🟨🟨🟨\n⬛⬛⬛⬛", a.Share)
}

func TestSummarizeInProgressSession(t *testing.T) {
	s, _ := newTestSession(t, ModeNormal)
	selectAll(t, s, "Apple", "Pear", "Plum", "Fig")
	_, err := s.Submit()
	require.NoError(t, err)

	res, err := Summarize(s)
	require.NoError(t, err)
	assert.False(t, res.Solved)
	assert.Len(t, res.FinalCategories, GroupCount)
	assert.Len(t, res.Transcript, 1)
}

func TestSummarizeAfterReveal(t *testing.T) {
	s, _ := newTestSession(t, ModeNormal)
	s.Reveal()

	res, err := Summarize(s)
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.Empty(t, res.Transcript)
	assert.Empty(t, res.Share)
}

func TestSummarizeLogInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		attempt Attempt
	}{
		{"unknown word", Attempt{Words: []string{"Apple", "Pear", "Plum", "Kiwi"}, Outcome: OutcomeWrong}},
		{"short attempt", Attempt{Words: []string{"Apple", "Pear"}, Outcome: OutcomeWrong}},
		{"correct across groups", Attempt{Words: []string{"Apple", "Pear", "Plum", "Red"}, Outcome: OutcomeCorrect}},
		{"unknown outcome", Attempt{Words: []string{"Apple", "Pear", "Plum", "Fig"}, Outcome: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SummarizeLog(testPuzzle(), []Attempt{tt.attempt}, false, 0)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	broken := testPuzzle()
	broken.Groups = broken.Groups[:2]
	_, err := SummarizeLog(broken, nil, false, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResultJSON(t *testing.T) {
	res, err := SummarizeLog(testPuzzle(), []Attempt{
		{Words: []string{"Red", "Blue", "Green", "Gold"}, Outcome: OutcomeCorrect, Group: "Color"},
	}, false, 1500*time.Millisecond)
	require.NoError(t, err)

	b, err := json.Marshal(res)
	require.NoError(t, err)

	var raw struct {
		DurationSeconds float64    `json:"durationSeconds"`
		Transcript      [][]string `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.InDelta(t, 1.5, raw.DurationSeconds, 1e-9)
	assert.Equal(t, [][]string{{"green", "green", "green", "green"}}, raw.Transcript)

	var back Result
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, res.Transcript, back.Transcript)
}

func TestMistakesJSON(t *testing.T) {
	b, err := json.Marshal(Bounded(3))
	require.NoError(t, err)
	assert.Equal(t, "3", string(b))

	b, err = json.Marshal(Unbounded())
	require.NoError(t, err)
	assert.Equal(t, `"unlimited"`, string(b))

	var m Mistakes
	require.NoError(t, json.Unmarshal([]byte(`"unlimited"`), &m))
	assert.True(t, m.IsUnbounded())
	require.NoError(t, json.Unmarshal([]byte(`2`), &m))
	n, ok := m.Remaining()
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &m))
}
