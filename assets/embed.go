// assets/embed.go
//
// Files compiled into the binary:
//   - puzzles.json: a small sample dataset so the server runs without PUZZLES_FILE.
//   - sql/*.sql:    schema migrations, applied in lexical order.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed puzzles.json sql/*.sql
var FS embed.FS

// Puzzles returns the embedded sample dataset.
func Puzzles() ([]byte, error) {
	return FS.ReadFile("puzzles.json")
}

// Migrations returns the embedded migrations rooted at the sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// "sql" is a fixed embedded path; Sub only fails on an invalid name.
		panic(err)
	}
	return sub
}
