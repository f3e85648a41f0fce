package nlsearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordInterpret(t *testing.T) {
	k := NewKeyword()
	ctx := context.Background()

	t.Run("Empty query", func(t *testing.T) {
		_, err := k.Interpret(ctx, "   ", 10)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("City after location marker", func(t *testing.T) {
		res, err := k.Interpret(ctx, "find developers in Berlin", 10)
		require.NoError(t, err)
		assert.Equal(t, "berlin", res.Filters.City)
	})

	t.Run("Trailing punctuation is stripped from the city", func(t *testing.T) {
		res, err := k.Interpret(ctx, "anyone from Munich?", 10)
		require.NoError(t, err)
		assert.Equal(t, "munich", res.Filters.City)
	})

	t.Run("Age becomes a band", func(t *testing.T) {
		res, err := k.Interpret(ctx, "musicians around 25", 10)
		require.NoError(t, err)
		assert.Equal(t, 20, res.Filters.MinAge)
		assert.Equal(t, 30, res.Filters.MaxAge)
	})

	t.Run("Out of range numbers are ignored", func(t *testing.T) {
		res, err := k.Interpret(ctx, "top 5 runners", 10)
		require.NoError(t, err)
		assert.Zero(t, res.Filters.MinAge)
		assert.Zero(t, res.Filters.MaxAge)
	})

	t.Run("Interest vocabulary maps to groups", func(t *testing.T) {
		res, err := k.Interpret(ctx, "guitar players who are into yoga", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"fitness", "music"}, res.Filters.Interests)
	})

	t.Run("Everything at once", func(t *testing.T) {
		res, err := k.Interpret(ctx, "software engineers in Hamburg around 30", 10)
		require.NoError(t, err)
		assert.Equal(t, "hamburg", res.Filters.City)
		assert.Equal(t, 25, res.Filters.MinAge)
		assert.Equal(t, 35, res.Filters.MaxAge)
		assert.Equal(t, []string{"technology"}, res.Filters.Interests)
	})

	t.Run("No recognizable constraints", func(t *testing.T) {
		res, err := k.Interpret(ctx, "someone nice", 10)
		require.NoError(t, err)
		assert.Equal(t, &Filters{}, res.Filters)
		assert.Empty(t, res.CandidateIDs)
	})
}
