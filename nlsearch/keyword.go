package nlsearch

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// Keyword is a deterministic interpreter used when no generative backend is
// configured. It recognizes "in <city>" / "from <city>" phrases, ages, and
// a fixed vocabulary of interest groups. Crude next to a language model,
// but dependable and offline.
type Keyword struct{}

func NewKeyword() *Keyword { return &Keyword{} }

var cityMarkers = map[string]bool{
	"in":       true,
	"from":     true,
	"near":     true,
	"city":     true,
	"location": true,
}

var interestGroups = map[string][]string{
	"music":      {"music", "musician", "singer", "guitar", "piano", "band"},
	"sports":     {"sports", "football", "basketball", "tennis", "running"},
	"art":        {"art", "artist", "painting", "drawing", "creative"},
	"technology": {"tech", "programming", "coding", "developer", "developers", "software", "engineer"},
	"business":   {"business", "entrepreneur", "startup", "marketing"},
	"education":  {"teacher", "student", "education", "learning"},
	"fitness":    {"fitness", "gym", "workout", "yoga", "exercise"},
}

const ageBand = 5

func (k *Keyword) Interpret(_ context.Context, query string, _ int) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	lower := strings.ToLower(query)
	words := strings.Fields(lower)
	f := &Filters{}

	// City: the word after the first location marker.
	for i, word := range words {
		if cityMarkers[word] && i+1 < len(words) {
			f.City = strings.Trim(words[i+1], ".,!?")
			break
		}
	}

	// Age: the first standalone number becomes a band around that age.
	for _, word := range words {
		n, err := strconv.Atoi(strings.Trim(word, ".,!?"))
		if err != nil || n < 10 || n > 120 {
			continue
		}
		f.MinAge = n - ageBand
		if f.MinAge < 0 {
			f.MinAge = 0
		}
		f.MaxAge = n + ageBand
		break
	}

	// Interests: any group whose vocabulary appears in the query.
	for group, keywords := range interestGroups {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				f.Interests = append(f.Interests, group)
				break
			}
		}
	}
	// Map iteration order is random; keep detected groups stable.
	sort.Strings(f.Interests)

	return &Result{Filters: f}, nil
}
