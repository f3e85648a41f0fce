package main

import (
	"context"
	"fmt"
)

// RecordDecision runs the like/dislike state machine for one (actor, target)
// pair: undecided → liked | disliked, where a later decision overwrites the
// prior one instead of appending. A like creates or refreshes the actor's
// match with a fresh compatibility snapshot and derives mutual status from
// the reciprocal decision; a dislike removes the actor's match and clears
// the other side's mutual flag. The store applies the whole transition
// atomically, so recording the same decision twice leaves the same end
// state as recording it once.
func (e *Engine) RecordDecision(ctx context.Context, actorID, targetID int, verdict Verdict) (*DecisionOutcome, error) {
	if actorID == targetID {
		return nil, validationf("cannot decide on yourself")
	}
	if verdict != VerdictLike && verdict != VerdictDislike {
		return nil, validationf("unknown verdict %q", verdict)
	}

	actor, err := e.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor profile: %w", err)
	}
	target, err := e.profiles.GetProfile(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("load target profile: %w", err)
	}

	// Snapshot the score before the write; the stored match keeps the
	// compatibility as it was at decision time.
	res := compatibilityScore(e.weights, actor, target)

	out, err := e.decisions.ApplyDecision(ctx, actorID, targetID, verdict, res.Score)
	if err != nil {
		return nil, fmt.Errorf("apply decision: %w", err)
	}

	e.log.Info().
		Int("actor_id", actorID).
		Int("target_id", targetID).
		Str("verdict", string(verdict)).
		Bool("mutual", out.Mutual).
		Msg("decision recorded")

	return out, nil
}
