package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader/v7"
)

// Profile summaries get attached to match lists and chat summaries. A
// request-scoped dataloader collapses the N per-row lookups into one
// IN-clause query; the loader (and its cache) lives only as long as the
// request, so results never go stale across requests.

func newSummaryLoader(db *sql.DB) *dataloader.Loader[int, *ProfileSummary] {
	return dataloader.NewBatchedLoader(
		summaryBatchFn(db),
		dataloader.WithWait[int, *ProfileSummary](4*time.Millisecond),
	)
}

// loadProfileSummaries resolves summaries for a set of user ids, keyed by
// id. Ids without a profile are simply absent from the result.
func loadProfileSummaries(ctx context.Context, db *sql.DB, ids []int) (map[int]*ProfileSummary, error) {
	out := make(map[int]*ProfileSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	loader := newSummaryLoader(db)
	thunks := make([]func() (*ProfileSummary, error), 0, len(ids))
	for _, id := range ids {
		thunks = append(thunks, loader.Load(ctx, id))
	}
	for i, thunk := range thunks {
		s, err := thunk()
		if err != nil {
			return nil, err
		}
		if s != nil {
			out[ids[i]] = s
		}
	}
	return out, nil
}

func summaryBatchFn(db *sql.DB) dataloader.BatchFunc[int, *ProfileSummary] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*ProfileSummary] {
		results := make([]*dataloader.Result[*ProfileSummary], len(keys))
		for i := range results {
			results[i] = &dataloader.Result[*ProfileSummary]{}
		}
		if len(keys) == 0 {
			return results
		}

		indexByID := make(map[int][]int, len(keys))
		placeholders := make([]string, len(keys))
		args := make([]interface{}, len(keys))
		for i, key := range keys {
			indexByID[key] = append(indexByID[key], i)
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = key
		}

		query := fmt.Sprintf(`
			SELECT user_id, first_name, last_name, COALESCE(city, ''), COALESCE(avatar_file, '')
			FROM profiles
			WHERE user_id IN (%s)
		`, strings.Join(placeholders, ", "))

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			for i := range results {
				results[i].Error = err
			}
			return results
		}
		defer rows.Close()

		for rows.Next() {
			s := &ProfileSummary{}
			if err := rows.Scan(&s.UserID, &s.FirstName, &s.LastName, &s.City, &s.AvatarFile); err != nil {
				for i := range results {
					results[i].Error = err
				}
				return results
			}
			for _, i := range indexByID[s.UserID] {
				results[i].Data = s
			}
		}
		if err := rows.Err(); err != nil {
			for i := range results {
				results[i].Error = err
			}
		}
		return results
	}
}
