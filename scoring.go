package main

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// ScoreWeights configures the weighted terms of the compatibility score.
// The defaults follow the classic split: shared interests dominate, skills
// second, with small locality, age-proximity and bio terms on top.
type ScoreWeights struct {
	Interests float64
	Skills    float64
	Age       float64
	City      float64
	Bio       float64

	// AgeBand is the age difference in years at which the age term
	// decays to zero.
	AgeBand int
}

func defaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Interests: 0.40,
		Skills:    0.30,
		Age:       0.10,
		City:      0.10,
		Bio:       0.10,
		AgeBand:   20,
	}
}

// ScoreResult is a compatibility score in [0,1] together with the overlap
// that explains it.
type ScoreResult struct {
	Score           float64
	CommonInterests []string
	CommonSkills    []string
}

// compatibilityScore computes the weighted similarity between two profiles.
// It is stateless and side-effect-free so candidates can be scored in
// parallel. Missing attributes contribute zero to their term instead of
// penalizing, so the function never fails. Every term is symmetric, hence
// compatibilityScore(w, a, b) == compatibilityScore(w, b, a).
func compatibilityScore(w ScoreWeights, a, b *Profile) ScoreResult {
	var score float64

	aInterests := interestNameSet(a.Interests)
	bInterests := interestNameSet(b.Interests)
	commonInterests := intersectNames(aInterests, bInterests)
	score += jaccard(aInterests, bInterests) * w.Interests

	aSkills := skillNameSet(a.Skills)
	bSkills := skillNameSet(b.Skills)
	commonSkills := intersectNames(aSkills, bSkills)
	score += jaccard(aSkills, bSkills) * w.Skills

	if a.Age > 0 && b.Age > 0 {
		diff := math.Abs(float64(a.Age - b.Age))
		band := float64(w.AgeBand)
		if band <= 0 {
			band = 1
		}
		score += math.Max(0, 1-diff/band) * w.Age
	}

	if a.City != "" && b.City != "" {
		if strings.EqualFold(strings.TrimSpace(a.City), strings.TrimSpace(b.City)) {
			score += w.City
		} else {
			// Both filled in a city but they differ: partial credit,
			// it still beats an unknown location.
			score += 0.5 * w.City
		}
	}

	if a.Bio != "" && b.Bio != "" {
		score += jaccard(bioTerms(a.Bio), bioTerms(b.Bio)) * w.Bio
	}

	return ScoreResult{
		Score:           math.Min(1, score),
		CommonInterests: commonInterests,
		CommonSkills:    commonSkills,
	}
}

func interestNameSet(items []Interest) map[string]string {
	set := make(map[string]string, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		set[strings.ToLower(name)] = name
	}
	return set
}

func skillNameSet(items []Skill) map[string]string {
	set := make(map[string]string, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		set[strings.ToLower(name)] = name
	}
	return set
}

// jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func jaccard(a, b map[string]string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	common := 0
	for k := range a {
		if _, ok := b[k]; ok {
			common++
		}
	}
	union := len(a) + len(b) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// intersectNames returns the display names present in both sets, sorted so
// feed output stays deterministic. Casing comes from the first set.
func intersectNames(a, b map[string]string) []string {
	common := make([]string, 0, len(a))
	for k, name := range a {
		if _, ok := b[k]; ok {
			common = append(common, name)
		}
	}
	sort.Strings(common)
	return common
}

// bioTerms lowercases a bio and splits it into a word set, dropping
// punctuation. A cheap stand-in for a full text-similarity model: close
// enough to give overlapping bios a nudge.
func bioTerms(bio string) map[string]string {
	words := strings.FieldsFunc(strings.ToLower(bio), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]string, len(words))
	for _, wrd := range words {
		set[wrd] = wrd
	}
	return set
}
