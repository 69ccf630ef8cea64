// internal/game/types.go
//
// Core type definitions for the Connections rules engine.
// Defines:
//   - Category / Puzzle: the immutable definition a session is built from.
//   - Mode / Mistakes: the mistake budget (bounded count or unlimited).
//   - Outcome / State: per-guess classification and session lifecycle.
//   - Attempt / Snapshot: attempt log entry and the read model for renderers.

package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	GroupCount      = 4 // categories per puzzle
	GroupSize       = 4 // words per category
	DefaultMistakes = 4 // mistake budget in ModeNormal
)

// Category is one labeled group of four words.
// JSON tags follow the published dataset ("group", "level", "members").
type Category struct {
	Name    string   `json:"group"`
	Level   int      `json:"level"`
	Members []string `json:"members"`
}

func (c Category) clone() Category {
	c.Members = append([]string(nil), c.Members...)
	return c
}

// Puzzle is a single day's definition: four categories in canonical order.
type Puzzle struct {
	ID     int        `json:"id"`
	Date   string     `json:"date"`
	Groups []Category `json:"answers"`
}

// Validate enforces the shape the engine relies on:
//   - exactly GroupCount named categories,
//   - GroupSize non-empty members each,
//   - no word repeated within or across categories.
func (p Puzzle) Validate() error {
	if len(p.Groups) != GroupCount {
		return fmt.Errorf("%w: want %d groups, got %d", ErrInvalidPuzzle, GroupCount, len(p.Groups))
	}
	seen := make(map[string]string, GroupCount*GroupSize)
	for i, g := range p.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("%w: group %d has no name", ErrInvalidPuzzle, i)
		}
		if len(g.Members) != GroupSize {
			return fmt.Errorf("%w: group %q has %d members, want %d", ErrInvalidPuzzle, g.Name, len(g.Members), GroupSize)
		}
		for _, w := range g.Members {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("%w: group %q has an empty member", ErrInvalidPuzzle, g.Name)
			}
			if other, dup := seen[w]; dup {
				return fmt.Errorf("%w: %q appears in %q and %q", ErrInvalidPuzzle, w, other, g.Name)
			}
			seen[w] = g.Name
		}
	}
	return nil
}

func (p Puzzle) clone() Puzzle {
	groups := make([]Category, len(p.Groups))
	for i, g := range p.Groups {
		groups[i] = g.clone()
	}
	p.Groups = groups
	return p
}

// Mode selects the mistake budget for a new session.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeUnlimited Mode = "unlimited"
)

// budget returns the starting budget; anything but ModeUnlimited is normal play.
func (m Mode) budget() Mistakes {
	if m == ModeUnlimited {
		return Unbounded()
	}
	return Bounded(DefaultMistakes)
}

// Mistakes is the remaining mistake budget: either a bounded count or unlimited.
// The zero value is Bounded(0), an exhausted budget.
type Mistakes struct {
	n         int
	unbounded bool
}

// Bounded returns a budget of n mistakes (negative n is clamped to zero).
func Bounded(n int) Mistakes {
	if n < 0 {
		n = 0
	}
	return Mistakes{n: n}
}

// Unbounded returns a budget that is never exhausted.
func Unbounded() Mistakes { return Mistakes{unbounded: true} }

// Remaining returns the count and true for a bounded budget, or (0, false) when unlimited.
func (m Mistakes) Remaining() (int, bool) {
	if m.unbounded {
		return 0, false
	}
	return m.n, true
}

func (m Mistakes) IsUnbounded() bool { return m.unbounded }

// Exhausted reports whether a bounded budget has reached zero.
func (m Mistakes) Exhausted() bool { return !m.unbounded && m.n == 0 }

// spend consumes one mistake. Unlimited budgets are unchanged.
func (m Mistakes) spend() Mistakes {
	if m.unbounded || m.n == 0 {
		return m
	}
	return Mistakes{n: m.n - 1}
}

func (m Mistakes) String() string {
	if m.unbounded {
		return "∞"
	}
	return strconv.Itoa(m.n)
}

// MarshalJSON encodes a bounded budget as a number and an unlimited one as "unlimited".
func (m Mistakes) MarshalJSON() ([]byte, error) {
	if m.unbounded {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(m.n)), nil
}

func (m *Mistakes) UnmarshalJSON(b []byte) error {
	if string(b) == `"unlimited"` {
		*m = Unbounded()
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("mistakes: %w", err)
	}
	*m = Bounded(n)
	return nil
}

// Outcome classifies a submitted guess.
type Outcome string

const (
	OutcomeCorrect  Outcome = "correct"   // all four words form one category
	OutcomeNearMiss Outcome = "near_miss" // three of four words share a category
	OutcomeWrong    Outcome = "wrong"
)

// State is the session lifecycle. Solved and Failed are absorbing.
type State string

const (
	StateInProgress State = "in_progress"
	StateSolved     State = "solved"
	StateFailed     State = "failed"
)

// Terminal reports whether no further mutation is accepted.
func (s State) Terminal() bool { return s == StateSolved || s == StateFailed }

// Attempt is one entry of the attempt log, recorded on every Submit.
type Attempt struct {
	Words   []string      `json:"words"`           // in selection order
	Outcome Outcome       `json:"outcome"`
	Group   string        `json:"group,omitempty"` // category name when Outcome is correct
	At      time.Duration `json:"at"`              // offset from session start
}

// Snapshot is an immutable copy of the session state for rendering.
// Nothing in it aliases the session's own slices.
type Snapshot struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Words     []string      `json:"words"`     // unsolved words, display order
	Selection []string      `json:"selection"` // selection order
	Found     []Category    `json:"found"`     // solve order
	Mistakes  Mistakes      `json:"mistakesRemaining"`
	State     State         `json:"state"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"elapsed"`
}
