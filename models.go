package main

import "time"

// Verdict is the recorded outcome of a swipe on a candidate.
type Verdict string

const (
	VerdictLike    Verdict = "like"
	VerdictDislike Verdict = "dislike"
)

// CategoryCustom marks interests and skills coined by users themselves,
// as opposed to the seeded catalog entries.
const CategoryCustom = "Custom"

// Interest is a shared catalog entry referenced by many profiles.
type Interest struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Skill is a shared catalog entry referenced by many profiles.
type Skill struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Profile represents a user's matching profile. Zero values mean the
// attribute was never provided: scoring and filtering treat those as
// absent instead of penalizing them.
type Profile struct {
	UserID      int        `json:"user_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Age         int        `json:"age,omitempty"`
	City        string     `json:"city,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	SearchGoals string     `json:"search_goals,omitempty"`
	Interests   []Interest `json:"interests"`
	Skills      []Skill    `json:"skills"`
	AvatarFile  string     `json:"profile_picture,omitempty"`
}

// Decision is the current verdict of one user toward another. There is at
// most one row per (actor, target) pair; a new decision overwrites it.
type Decision struct {
	ActorID   int       `json:"actor_id"`
	TargetID  int       `json:"target_id"`
	Verdict   Verdict   `json:"verdict"`
	DecidedAt time.Time `json:"decided_at"`
}

// Match is a one-sided "like" outcome with a compatibility snapshot taken
// when the like was recorded. Mutual is derived from the pair of current
// decisions, never authored directly.
type Match struct {
	ActorID   int       `json:"user_id"`
	TargetID  int       `json:"matched_user_id"`
	Score     float64   `json:"compatibility_score"`
	Mutual    bool      `json:"is_mutual"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchView is a Match joined with the target's profile summary for display.
type MatchView struct {
	Match
	Target *ProfileSummary `json:"matched_user,omitempty"`
}

// ProfileSummary is the short form of a profile attached to match lists
// and chat summaries.
type ProfileSummary struct {
	UserID     int    `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	City       string `json:"city,omitempty"`
	AvatarFile string `json:"profile_picture,omitempty"`
}

// Recommendation is a transient feed entry: a candidate profile plus the
// compatibility score and the overlap that explains it. Computed fresh per
// request, never persisted.
type Recommendation struct {
	UserID          int      `json:"user_id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Age             int      `json:"age,omitempty"`
	City            string   `json:"city,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	AvatarFile      string   `json:"profile_picture,omitempty"`
	Score           float64  `json:"compatibility_score"`
	CommonInterests []string `json:"common_interests"`
	CommonSkills    []string `json:"common_skills"`
}

// SearchFilters are the explicit constraints a feed or search request may
// carry. Zero values impose no restriction.
type SearchFilters struct {
	City      string   `json:"city,omitempty"`
	MinAge    int      `json:"min_age,omitempty"`
	MaxAge    int      `json:"max_age,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

// DecisionOutcome is what a recorded decision produced: the actor's match
// row if the verdict was a like, and the mutual status after the write.
type DecisionOutcome struct {
	Match  *Match `json:"match,omitempty"`
	Mutual bool   `json:"mutual"`
}

func newRecommendation(p *Profile, res ScoreResult) Recommendation {
	return Recommendation{
		UserID:          p.UserID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Age:             p.Age,
		City:            p.City,
		Bio:             p.Bio,
		AvatarFile:      p.AvatarFile,
		Score:           res.Score,
		CommonInterests: res.CommonInterests,
		CommonSkills:    res.CommonSkills,
	}
}
