// internal/game/result.go
//
// End-of-game summary for a finished (or resigned) session.
// Responsibilities:
//   - Reveal all four categories in canonical puzzle order, solved or not.
//   - Build the color-coded transcript: one row per attempt, in submission order.
//   - Report solved flag, duration, attempts and mistakes made.
//
// Transcript rule:
//   - correct attempt → one marker per word, colored by that word's category
//     index in the puzzle (0 yellow, 1 green, 2 blue, 3 purple);
//   - near miss / wrong → four miss markers.
package game

import (
	"fmt"
	"strings"
	"time"
)

// Marker is one cell of the transcript.
type Marker int

const (
	MarkerYellow Marker = iota
	MarkerGreen
	MarkerBlue
	MarkerPurple
	MarkerMiss
)

var (
	markerNames = [...]string{"yellow", "green", "blue", "purple", "miss"}
	markerEmoji = [...]string{"🟨", "🟩", "🟦", "🟪", "⬛"}
)

func (m Marker) String() string {
	if m < 0 || int(m) >= len(markerNames) {
		return fmt.Sprintf("Marker(%d)", int(m))
	}
	return markerNames[m]
}

// Emoji returns the square used in shareable transcripts.
func (m Marker) Emoji() string {
	if m < 0 || int(m) >= len(markerEmoji) {
		return "?"
	}
	return markerEmoji[m]
}

func (m Marker) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Marker) UnmarshalText(b []byte) error {
	for i, n := range markerNames {
		if n == string(b) {
			*m = Marker(i)
			return nil
		}
	}
	return fmt.Errorf("unknown marker %q", b)
}

// Row is the transcript line for one attempt.
type Row [GroupSize]Marker

// Transcript is the ordered, color-coded record of every attempt.
type Transcript []Row

// String renders one line of emoji per attempt.
func (t Transcript) String() string {
	var b strings.Builder
	for i, row := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, m := range row {
			b.WriteString(m.Emoji())
		}
	}
	return b.String()
}

// Result is the end-of-game report.
type Result struct {
	Date            string        `json:"date"`
	Solved          bool          `json:"solved"`
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"durationSeconds"`
	Attempts        []Attempt     `json:"attempts"`
	Mistakes        int           `json:"mistakes"`        // near misses + wrong guesses
	FinalCategories []Category    `json:"finalCategories"` // canonical order
	Transcript      Transcript    `json:"transcript"`
	Share           string        `json:"share"`
}

// Summarize builds the report for s. A session that is not terminal is
// reported as not solved.
func Summarize(s *Session) (Result, error) {
	return SummarizeLog(s.puzzle, s.attempts, s.state == StateSolved, s.Elapsed())
}

// SummarizeLog is the pure form of Summarize. It fails with ErrInvalidInput
// when an attempt references a word outside p, has the wrong size, or is
// marked correct without its words forming a single category.
func SummarizeLog(p Puzzle, attempts []Attempt, solved bool, elapsed time.Duration) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	index := make(map[string]int, GroupCount*GroupSize)
	for i, g := range p.Groups {
		for _, w := range g.Members {
			index[w] = i
		}
	}

	res := Result{
		Date:            p.Date,
		Solved:          solved,
		Duration:        elapsed,
		DurationSeconds: elapsed.Seconds(),
		Attempts:        make([]Attempt, 0, len(attempts)),
		FinalCategories: p.clone().Groups,
		Transcript:      make(Transcript, 0, len(attempts)),
	}

	for n, a := range attempts {
		if len(a.Words) != GroupSize {
			return Result{}, fmt.Errorf("%w: attempt %d has %d words", ErrInvalidInput, n+1, len(a.Words))
		}
		var row Row
		for i, w := range a.Words {
			g, ok := index[w]
			if !ok {
				return Result{}, fmt.Errorf("%w: attempt %d: %q is not in the puzzle", ErrInvalidInput, n+1, w)
			}
			row[i] = Marker(g)
		}

		switch a.Outcome {
		case OutcomeCorrect:
			for _, m := range row {
				if m != row[0] {
					return Result{}, fmt.Errorf("%w: attempt %d is marked correct but spans categories", ErrInvalidInput, n+1)
				}
			}
		case OutcomeNearMiss, OutcomeWrong:
			row = Row{MarkerMiss, MarkerMiss, MarkerMiss, MarkerMiss}
			res.Mistakes++
		default:
			return Result{}, fmt.Errorf("%w: attempt %d has outcome %q", ErrInvalidInput, n+1, a.Outcome)
		}

		a.Words = append([]string(nil), a.Words...)
		res.Attempts = append(res.Attempts, a)
		res.Transcript = append(res.Transcript, row)
	}
	res.Share = res.Transcript.String()
	return res, nil
}
