package main

import "context"

// The engine reads and writes through these narrow interfaces. The postgres
// implementations live in pgstore.go; tests run against in-memory ones.

// ProfileStore is the engine's read-only view of user profiles.
type ProfileStore interface {
	// GetProfile returns the profile for a user, or an error wrapping
	// ErrNotFound when none exists.
	GetProfile(ctx context.Context, userID int) (*Profile, error)

	// ListProfiles returns every profile whose user id is not in excluding.
	ListProfiles(ctx context.Context, excluding map[int]struct{}) ([]*Profile, error)

	// SearchByName returns profiles whose first or last name contains the
	// query, case-insensitively.
	SearchByName(ctx context.Context, query string, limit int) ([]*Profile, error)
}

// DecisionStore records like/dislike verdicts and exposes the decided set
// used for feed exclusion.
type DecisionStore interface {
	// GetDecision returns the current decision for the pair, or (nil, nil)
	// when the actor has not decided on the target yet.
	GetDecision(ctx context.Context, actorID, targetID int) (*Decision, error)

	// ListDecidedTargets returns the set of user ids the actor has already
	// decided on, with either verdict.
	ListDecidedTargets(ctx context.Context, actorID int) (map[int]struct{}, error)

	// ApplyDecision atomically upserts the verdict and reconciles both
	// match rows for the pair: on like it writes the actor's match with the
	// score snapshot and derives mutual status from the reciprocal
	// decision; on dislike it removes the actor's match and clears the
	// reciprocal match's mutual flag. Concurrent decisions on the same pair
	// serialize to a last-writer-wins outcome, and readers never observe a
	// half-applied transition.
	ApplyDecision(ctx context.Context, actorID, targetID int, verdict Verdict, score float64) (*DecisionOutcome, error)
}

// MatchStore lists the matches derived from recorded likes.
type MatchStore interface {
	ListMatches(ctx context.Context, actorID int) ([]*Match, error)
	ListMutualMatches(ctx context.Context, actorID int) ([]*Match, error)
}
