package agent

import "errors"

var (
	// ErrAborted is returned when generation failed in a way retrying
	// cannot fix (persistent API errors, no extractable code).
	ErrAborted = errors.New("generation aborted")

	// ErrExhausted is returned when the retry budget ran out without a
	// passing parser.
	ErrExhausted = errors.New("retry budget exhausted")
)
