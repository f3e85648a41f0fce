package main

import "strings"

// applyFilters narrows a candidate pool down to the profiles satisfying the
// given constraints. An empty or absent constraint imposes no restriction.
// The filter is total over its input: contradictory bounds (minAge > maxAge)
// simply produce an empty result, never an error. Ordering is left to the
// feed builder.
func applyFilters(pool []*Profile, f *SearchFilters) []*Profile {
	if f == nil {
		return pool
	}
	out := make([]*Profile, 0, len(pool))
	for _, p := range pool {
		if matchesFilters(p, f) {
			out = append(out, p)
		}
	}
	return out
}

func matchesFilters(p *Profile, f *SearchFilters) bool {
	if f.City != "" {
		if p.City == "" || !strings.Contains(strings.ToLower(p.City), strings.ToLower(f.City)) {
			return false
		}
	}
	// Age bounds exclude profiles that never filled in an age: an unknown
	// age cannot satisfy an explicit bound.
	if f.MinAge > 0 && (p.Age == 0 || p.Age < f.MinAge) {
		return false
	}
	if f.MaxAge > 0 && (p.Age == 0 || p.Age > f.MaxAge) {
		return false
	}
	if len(f.Interests) > 0 && !hasAnyTerm(f.Interests, interestNames(p.Interests)) {
		return false
	}
	if len(f.Skills) > 0 && !hasAnyTerm(f.Skills, skillNames(p.Skills)) {
		return false
	}
	return true
}

// hasAnyTerm reports whether at least one requested term matches one of the
// candidate's names, case-insensitively, by exact or substring match.
func hasAnyTerm(terms, names []string) bool {
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), term) {
				return true
			}
		}
	}
	return false
}

func interestNames(items []Interest) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

func skillNames(items []Skill) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}
