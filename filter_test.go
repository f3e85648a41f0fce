package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func poolIDs(pool []*Profile) []int {
	ids := make([]int, 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.UserID)
	}
	return ids
}

func TestApplyFilters(t *testing.T) {
	pool := testProfiles()

	t.Run("Nil filters pass everything through", func(t *testing.T) {
		assert.Equal(t, pool, applyFilters(pool, nil))
	})

	t.Run("Empty filters pass everything through", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{})
		assert.ElementsMatch(t, []int{1, 2, 3, 4}, poolIDs(got))
	})

	t.Run("City matches case-insensitively by substring", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{City: "berl"})
		assert.ElementsMatch(t, []int{1, 2}, poolIDs(got))
	})

	t.Run("Age bounds exclude unknown ages", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{MinAge: 25, MaxAge: 35})
		// Dave has no age on file, Carol is 45.
		assert.ElementsMatch(t, []int{1, 2}, poolIDs(got))
	})

	t.Run("Contradictory age bounds yield empty, not error", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{MinAge: 40, MaxAge: 20})
		assert.Empty(t, got)
	})

	t.Run("Any interest term suffices", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{Interests: []string{"sports", "art"}})
		assert.ElementsMatch(t, []int{2, 3}, poolIDs(got))
	})

	t.Run("Interest terms match by substring", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{Interests: []string{"tech"}})
		assert.ElementsMatch(t, []int{1}, poolIDs(got))
	})

	t.Run("Skill terms work the same way", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{Skills: []string{"go"}})
		assert.ElementsMatch(t, []int{1, 2}, poolIDs(got))
	})

	t.Run("Constraints combine conjunctively", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{City: "Berlin", Interests: []string{"art"}})
		assert.ElementsMatch(t, []int{2}, poolIDs(got))
	})

	t.Run("No survivors returns empty slice", func(t *testing.T) {
		got := applyFilters(pool, &SearchFilters{City: "Osaka"})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
