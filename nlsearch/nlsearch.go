// Package nlsearch turns free-text people-search queries ("developers in
// San Francisco") into structured candidate constraints. The language
// understanding itself is delegated to a collaborator behind the Interpreter
// interface: a Gemini-backed implementation and a deterministic keyword
// fallback both live here.
package nlsearch

import (
	"context"
	"errors"
)

var (
	// ErrEmptyQuery rejects blank or whitespace-only queries before any
	// collaborator is consulted.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrUnavailable marks interpreter failures (timeouts, service errors,
	// unparseable output) so callers can surface "search temporarily
	// unavailable" instead of a misleading empty result.
	ErrUnavailable = errors.New("query interpreter unavailable")
)

// Filters are the structured constraints extracted from a query. Zero
// values impose no restriction.
type Filters struct {
	City      string   `json:"city,omitempty"`
	MinAge    int      `json:"min_age,omitempty"`
	MaxAge    int      `json:"max_age,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

// Result is what an interpreter resolved the query to: either structured
// filters for a candidate search, or a ranked list of profile ids directly.
// Exactly one of the two is set.
type Result struct {
	Filters      *Filters
	CandidateIDs []int
}

// Interpreter maps a free-text query to a Result. Implementations must
// respect ctx cancellation and return an error wrapping ErrEmptyQuery or
// ErrUnavailable for the corresponding failure modes.
type Interpreter interface {
	Interpret(ctx context.Context, query string, limit int) (*Result, error)
}
