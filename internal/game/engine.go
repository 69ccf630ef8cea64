// internal/game/engine.go
//
// Core rules engine for a single Connections session.
// Responsibilities:
//   - Build a session from a validated puzzle and a mistake mode.
//   - Apply player intents: toggle a word, shuffle, submit, reveal, resign.
//   - Classify guesses as correct / near miss / wrong and spend mistakes.
//   - Track state transitions: in_progress → solved/failed (both absorbing).
//   - Expose an immutable Snapshot for whatever renders the board.
//
// Notes:
//   - Randomness and time are injected (Shuffler, Clock) so tests are deterministic.
//   - A session is owned by one driver; it is not safe for concurrent use.
//   - Operations on a terminal session are silent no-ops.
package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Shuffler randomizes display order. *rand.Rand from math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Clock supplies the current time for start/elapsed measurement.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Session is one attempt at one puzzle.
type Session struct {
	ID string

	puzzle    Puzzle
	owner     map[string]int // word → category index
	pool      []string       // all words in display order
	solved    [GroupCount]bool
	found     []int // category indices in solve order
	selection []string
	mistakes  Mistakes
	state     State
	attempts  []Attempt
	started   time.Time
	ended     time.Time

	rng   Shuffler
	clock Clock
}

// New constructs a session. The puzzle must pass Validate.
// A nil rng falls back to a time-seeded PCG source, a nil clk to the wall clock.
// The word pool is shuffled once before the first snapshot.
func New(p Puzzle, mode Mode, rng Shuffler, clk Clock) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if clk == nil {
		clk = systemClock{}
	}

	s := &Session{
		ID:       uuid.NewString(),
		puzzle:   p.clone(),
		owner:    make(map[string]int, GroupCount*GroupSize),
		pool:     make([]string, 0, GroupCount*GroupSize),
		mistakes: mode.budget(),
		state:    StateInProgress,
		rng:      rng,
		clock:    clk,
	}
	for i, g := range s.puzzle.Groups {
		for _, w := range g.Members {
			s.owner[w] = i
			s.pool = append(s.pool, w)
		}
	}
	s.shufflePool()
	s.started = clk.Now()
	return s, nil
}

// Toggle selects word, or deselects it if already selected.
// Selecting a fifth word is ignored; the selection is capacity-bounded.
// Returns ErrInvalidWord when word is not in the remaining pool.
func (s *Session) Toggle(word string) error {
	if s.state.Terminal() {
		return nil
	}
	if !s.remaining(word) {
		return fmt.Errorf("%w: %q", ErrInvalidWord, word)
	}
	if i := slices.Index(s.selection, word); i >= 0 {
		s.selection = slices.Delete(slices.Clone(s.selection), i, i+1)
		return nil
	}
	if len(s.selection) < GroupSize {
		s.selection = append(s.selection, word)
	}
	return nil
}

// Shuffle reorders the word pool. Selection and found groups are untouched.
func (s *Session) Shuffle() {
	if s.state.Terminal() {
		return
	}
	s.shufflePool()
}

// Submit evaluates the current selection.
//
// Classification:
//   - all four words belong to one category → OutcomeCorrect, category found;
//   - otherwise three of four share a category → OutcomeNearMiss;
//   - otherwise → OutcomeWrong.
//
// Near misses and wrong guesses both spend a mistake (none in ModeUnlimited).
// The selection is cleared whatever the outcome.
// A terminal session returns ("", nil) and does nothing.
func (s *Session) Submit() (Outcome, error) {
	if s.state.Terminal() {
		return "", nil
	}
	if len(s.selection) != GroupSize {
		return "", fmt.Errorf("%w: %d of %d selected", ErrIncompleteSelection, len(s.selection), GroupSize)
	}

	guess := slices.Clone(s.selection)
	outcome, group := s.classify(guess)
	entry := Attempt{Words: guess, Outcome: outcome, At: s.clock.Now().Sub(s.started)}

	if outcome == OutcomeCorrect {
		entry.Group = s.puzzle.Groups[group].Name
		s.markFound(group)
	} else {
		s.mistakes = s.mistakes.spend()
	}
	s.attempts = append(s.attempts, entry)
	s.selection = nil

	switch {
	case len(s.found) == GroupCount:
		s.finish(StateSolved)
	case s.mistakes.Exhausted():
		s.finish(StateFailed)
	}
	return outcome, nil
}

// Reveal solves every remaining category in canonical order and ends the
// session as solved, without touching the mistake budget or the attempt log.
func (s *Session) Reveal() {
	if s.state.Terminal() {
		return
	}
	for i := range s.puzzle.Groups {
		if !s.solved[i] {
			s.markFound(i)
		}
	}
	s.selection = nil
	s.finish(StateSolved)
}

// Resign ends the session early as failed, keeping whatever was found.
func (s *Session) Resign() {
	if s.state.Terminal() {
		return
	}
	s.selection = nil
	s.finish(StateFailed)
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Elapsed is the time since start, frozen once the session is terminal.
func (s *Session) Elapsed() time.Duration {
	if s.state.Terminal() {
		return s.ended.Sub(s.started)
	}
	return s.clock.Now().Sub(s.started)
}

// Attempts returns a copy of the attempt log in submission order.
func (s *Session) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	for i, a := range s.attempts {
		a.Words = slices.Clone(a.Words)
		out[i] = a
	}
	return out
}

// Snapshot returns a read-only copy of the session for rendering.
func (s *Session) Snapshot() Snapshot {
	words := make([]string, 0, len(s.pool))
	for _, w := range s.pool {
		if !s.solved[s.owner[w]] {
			words = append(words, w)
		}
	}
	found := make([]Category, len(s.found))
	for i, g := range s.found {
		found[i] = s.puzzle.Groups[g].clone()
	}
	return Snapshot{
		ID:        s.ID,
		Date:      s.puzzle.Date,
		Words:     words,
		Selection: append([]string{}, s.selection...),
		Found:     found,
		Mistakes:  s.mistakes,
		State:     s.state,
		Attempts:  len(s.attempts),
		Elapsed:   s.Elapsed(),
	}
}

// classify counts how many guessed words fall into each category.
// An exact match can hold for at most one category since categories are disjoint,
// and it takes precedence over any near miss.
func (s *Session) classify(guess []string) (Outcome, int) {
	var counts [GroupCount]int
	for _, w := range guess {
		counts[s.owner[w]]++
	}
	for i, n := range counts {
		if n == GroupSize {
			return OutcomeCorrect, i
		}
	}
	for _, n := range counts {
		if n == GroupSize-1 {
			return OutcomeNearMiss, -1
		}
	}
	return OutcomeWrong, -1
}

// remaining reports whether word is in the puzzle and not yet solved.
func (s *Session) remaining(word string) bool {
	g, ok := s.owner[word]
	return ok && !s.solved[g]
}

func (s *Session) markFound(group int) {
	s.solved[group] = true
	s.found = append(s.found, group)
}

func (s *Session) shufflePool() {
	s.rng.Shuffle(len(s.pool), func(i, j int) {
		s.pool[i], s.pool[j] = s.pool[j], s.pool[i]
	})
}

func (s *Session) finish(st State) {
	s.state = st
	s.ended = s.clock.Now()
}
