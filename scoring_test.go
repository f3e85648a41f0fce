package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatibilityScore(t *testing.T) {
	w := defaultScoreWeights()

	t.Run("Identical profiles score full marks", func(t *testing.T) {
		p := &Profile{
			UserID: 1, Age: 30, City: "Berlin", Bio: "coffee and code",
			Interests: []Interest{{Name: "Music"}},
			Skills:    []Skill{{Name: "Go"}},
		}
		twin := *p
		twin.UserID = 2

		res := compatibilityScore(w, p, &twin)
		assert.InDelta(t, 1.0, res.Score, 1e-9)
		assert.Equal(t, []string{"Music"}, res.CommonInterests)
		assert.Equal(t, []string{"Go"}, res.CommonSkills)
	})

	t.Run("Partial interest overlap", func(t *testing.T) {
		a := &Profile{Interests: []Interest{{Name: "Music"}, {Name: "Tech"}}}
		b := &Profile{Interests: []Interest{{Name: "Music"}, {Name: "Art"}}}

		res := compatibilityScore(w, a, b)
		// Jaccard 1/3 on the interests term only.
		assert.InDelta(t, w.Interests/3, res.Score, 1e-9)
		assert.Equal(t, []string{"Music"}, res.CommonInterests)
		assert.Empty(t, res.CommonSkills)
	})

	t.Run("Interest names compare case-insensitively", func(t *testing.T) {
		a := &Profile{Interests: []Interest{{Name: "MUSIC"}}}
		b := &Profile{Interests: []Interest{{Name: "music"}}}

		res := compatibilityScore(w, a, b)
		assert.InDelta(t, w.Interests, res.Score, 1e-9)
		// Casing of the first argument wins in the overlap list.
		assert.Equal(t, []string{"MUSIC"}, res.CommonInterests)
	})

	t.Run("Age term decays linearly", func(t *testing.T) {
		a := &Profile{Age: 30}
		b := &Profile{Age: 40}

		res := compatibilityScore(w, a, b)
		// 10 years apart in a 20 year band leaves half the age weight.
		assert.InDelta(t, w.Age*0.5, res.Score, 1e-9)
	})

	t.Run("Age gap past the band contributes nothing", func(t *testing.T) {
		a := &Profile{Age: 20}
		b := &Profile{Age: 60}

		res := compatibilityScore(w, a, b)
		assert.InDelta(t, 0, res.Score, 1e-9)
	})

	t.Run("Missing attributes do not penalize", func(t *testing.T) {
		a := &Profile{Age: 30, City: "Berlin", Bio: "hello"}
		b := &Profile{} // nothing filled in

		res := compatibilityScore(w, a, b)
		assert.InDelta(t, 0, res.Score, 1e-9)
		assert.Empty(t, res.CommonInterests)
		assert.Empty(t, res.CommonSkills)
	})

	t.Run("Same city beats different city beats unknown city", func(t *testing.T) {
		base := &Profile{City: "Berlin"}
		same := compatibilityScore(w, base, &Profile{City: "berlin"}).Score
		different := compatibilityScore(w, base, &Profile{City: "Munich"}).Score
		unknown := compatibilityScore(w, base, &Profile{}).Score

		assert.InDelta(t, w.City, same, 1e-9)
		assert.InDelta(t, w.City*0.5, different, 1e-9)
		assert.InDelta(t, 0, unknown, 1e-9)
	})

	t.Run("Bio overlap adds the text term", func(t *testing.T) {
		a := &Profile{Bio: "hiking and photography"}
		b := &Profile{Bio: "hiking and painting"}

		res := compatibilityScore(w, a, b)
		// Words {hiking, and} shared out of {hiking, and, photography, painting}.
		assert.InDelta(t, w.Bio*2/4, res.Score, 1e-9)
	})

	t.Run("Symmetric in its arguments", func(t *testing.T) {
		profiles := testProfiles()
		for _, a := range profiles {
			for _, b := range profiles {
				ab := compatibilityScore(w, a, b)
				ba := compatibilityScore(w, b, a)
				require.InDelta(t, ab.Score, ba.Score, 1e-9,
					"score(%d,%d) != score(%d,%d)", a.UserID, b.UserID, b.UserID, a.UserID)
			}
		}
	})

	t.Run("Score stays within bounds", func(t *testing.T) {
		profiles := testProfiles()
		for _, a := range profiles {
			for _, b := range profiles {
				res := compatibilityScore(w, a, b)
				require.GreaterOrEqual(t, res.Score, 0.0)
				require.LessOrEqual(t, res.Score, 1.0)
			}
		}
	})
}

func TestJaccard(t *testing.T) {
	empty := map[string]string{}
	ab := map[string]string{"a": "a", "b": "b"}
	bc := map[string]string{"b": "b", "c": "c"}

	if got := jaccard(empty, empty); got != 0 {
		t.Errorf("jaccard of two empty sets = %v, want 0", got)
	}
	if got := jaccard(ab, empty); got != 0 {
		t.Errorf("jaccard against empty set = %v, want 0", got)
	}
	if got := jaccard(ab, bc); got != 1.0/3 {
		t.Errorf("jaccard({a,b},{b,c}) = %v, want 1/3", got)
	}
	if got := jaccard(ab, ab); got != 1 {
		t.Errorf("jaccard of identical sets = %v, want 1", got)
	}
}

func TestBioTerms(t *testing.T) {
	terms := bioTerms("Hiking, hiking & PHOTOGRAPHY!")
	if len(terms) != 2 {
		t.Fatalf("expected 2 distinct terms, got %v", terms)
	}
	for _, want := range []string{"hiking", "photography"} {
		if _, ok := terms[want]; !ok {
			t.Errorf("missing term %q in %v", want, terms)
		}
	}
}
