// internal/puzzles/catalog.go
//
// Puzzle catalog: the dataset of daily Connections puzzles, keyed by date.
//
// Responsibilities:
//   - Parse the published dataset format (array of {id, date, answers}).
//   - Validate every definition before any session can be built from it.
//   - Index by date; expose earliest/latest/random and puzzle-of-the-day lookups.
//
// Sources (Open):
//   1. A file path (PUZZLES_FILE in config) when set.
//   2. Otherwise the small sample dataset embedded in the assets package.
//
// Constraints:
//   • Dates are YYYY-MM-DD and unique across the dataset.
//   • Words and group names are trimmed; case is kept as published.
//   • A Catalog is immutable once built and safe for concurrent reads.

package puzzles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/assets"
	"github.com/robalobadob/connections/internal/daily"
	"github.com/robalobadob/connections/internal/game"
)

// ErrNoPuzzle is returned when no puzzle exists for the requested date.
var ErrNoPuzzle = errors.New("no puzzle for date")

// Picker chooses an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

// Catalog holds validated puzzles indexed by date.
type Catalog struct {
	byDate map[string]game.Puzzle
	dates  []string // ascending
}

// New validates puzzles and builds a catalog. It fails on an empty list,
// a malformed date, a duplicate date, or any puzzle failing game validation.
func New(list []game.Puzzle) (*Catalog, error) {
	if len(list) == 0 {
		return nil, errors.New("puzzles: dataset is empty")
	}
	c := &Catalog{
		byDate: make(map[string]game.Puzzle, len(list)),
		dates:  make([]string, 0, len(list)),
	}
	for _, p := range list {
		p = normalize(p)
		if _, err := time.Parse(time.DateOnly, p.Date); err != nil {
			return nil, fmt.Errorf("puzzles: id %d: %w: bad date %q", p.ID, game.ErrInvalidPuzzle, p.Date)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("puzzles: %s: %w", p.Date, err)
		}
		if _, dup := c.byDate[p.Date]; dup {
			return nil, fmt.Errorf("puzzles: duplicate date %s", p.Date)
		}
		c.byDate[p.Date] = p
		c.dates = append(c.dates, p.Date)
	}
	sort.Strings(c.dates)
	return c, nil
}

// Load parses a dataset from r.
func Load(r io.Reader) (*Catalog, error) {
	var list []game.Puzzle
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("puzzles: decode: %w", err)
	}
	return New(list)
}

// LoadFile parses the dataset at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// LoadEmbedded parses the sample dataset compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	b, err := assets.Puzzles()
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(b))
}

// Open loads from path, or from the embedded sample when path is empty.
func Open(path string) (*Catalog, error) {
	var (
		c   *Catalog
		err error
	)
	source := path
	if path == "" {
		source = "embedded"
		c, err = LoadEmbedded()
	} else {
		c, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("source", source).
		Int("puzzles", c.Len()).
		Str("earliest", c.Earliest()).
		Str("latest", c.Latest()).
		Msg("puzzle catalog loaded")
	return c, nil
}

// Get returns the puzzle published on date (YYYY-MM-DD).
func (c *Catalog) Get(date string) (game.Puzzle, error) {
	p, ok := c.byDate[date]
	if !ok {
		return game.Puzzle{}, fmt.Errorf("%w %q", ErrNoPuzzle, date)
	}
	return p, nil
}

// Has reports whether a puzzle exists for date.
func (c *Catalog) Has(date string) bool {
	_, ok := c.byDate[date]
	return ok
}

// Len returns the number of puzzles.
func (c *Catalog) Len() int { return len(c.dates) }

// Dates returns all dates in ascending order.
func (c *Catalog) Dates() []string { return append([]string(nil), c.dates...) }

func (c *Catalog) Earliest() string { return c.dates[0] }

func (c *Catalog) Latest() string { return c.dates[len(c.dates)-1] }

// Random picks a date uniformly.
func (c *Catalog) Random(r Picker) string {
	return c.dates[r.IntN(len(c.dates))]
}

// Daily returns the puzzle for t's UTC date when the dataset has one.
// Otherwise it falls back to a stable pick keyed by the date and salt, so
// every player sees the same puzzle on the same day.
func (c *Catalog) Daily(t time.Time, salt string) game.Puzzle {
	date := daily.DateKey(t)
	if p, ok := c.byDate[date]; ok {
		return p
	}
	return c.byDate[c.dates[daily.PuzzleIndex(t, salt, len(c.dates))]]
}

// normalize trims words and names; the published data is hand-edited.
func normalize(p game.Puzzle) game.Puzzle {
	p.Date = strings.TrimSpace(p.Date)
	groups := make([]game.Category, len(p.Groups))
	for i, g := range p.Groups {
		members := make([]string, len(g.Members))
		for j, w := range g.Members {
			members[j] = strings.TrimSpace(w)
		}
		groups[i] = game.Category{Name: strings.TrimSpace(g.Name), Level: g.Level, Members: members}
	}
	p.Groups = groups
	return p
}
