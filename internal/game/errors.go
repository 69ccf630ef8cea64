package game

import "errors"

var (
	// ErrInvalidWord is returned when an operation names a word that is not in
	// the remaining pool (already solved, or never part of the puzzle).
	ErrInvalidWord = errors.New("word is not in the remaining pool")

	// ErrIncompleteSelection is returned by Submit unless exactly GroupSize
	// words are selected.
	ErrIncompleteSelection = errors.New("selection is incomplete")

	// ErrInvalidPuzzle marks a puzzle definition that breaks cardinality or
	// disjointness. Sessions are never created from one.
	ErrInvalidPuzzle = errors.New("invalid puzzle")

	// ErrInvalidInput is returned by the summarizer when the attempt log is
	// inconsistent with the puzzle.
	ErrInvalidInput = errors.New("invalid input")
)
