// Package hberrors defines the sentinel error kinds shared across the
// neighbourhood-engine packages, so callers (and the CLI's exit-code
// mapping) can classify a failure with errors.Is regardless of which
// package produced it.
package hberrors

import "errors"

// Sentinel error kinds. Each package wraps one of these with call-site
// context via fmt.Errorf("...: %w", ...); none is ever returned bare.
var (
	// ErrInvalidArgument covers negative counts, shrink requests, and
	// other arguments that are structurally impossible to satisfy.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState covers misuse of a stateful cursor or an engine
	// used after it has been released.
	ErrInvalidState = errors.New("invalid state")

	// ErrIOError covers graph-file read/write failures.
	ErrIOError = errors.New("i/o error")

	// ErrMissingTranspose covers an edge deletion attempted without a
	// transpose graph reference.
	ErrMissingTranspose = errors.New("missing transpose")

	// ErrIncompatibleShape covers a union attempted between counter
	// arrays with different (log2m, registerSize, seed) or chunk layout.
	ErrIncompatibleShape = errors.New("incompatible counter shape")

	// ErrTooManySources covers an MS-BFS invocation with more sources
	// than the configured word width.
	ErrTooManySources = errors.New("too many sources")
)
