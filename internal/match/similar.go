package match

import (
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultSimilarity is the Jaro-Winkler score at or above which two team
// names are reported as similar.
const DefaultSimilarity = 0.92

// Similarity describes why two names were paired.
type Similarity string

const (
	// SameNormalized means the names are equal once whitespace, Unicode
	// form and case are normalized (e.g. "India" and "India ").
	SameNormalized Similarity = "normalized"
	// Close means the names are distinct after normalization but score at or
	// above the threshold.
	Close Similarity = "similar"
)

// NamePair is two distinct team names that probably refer to the same side.
type NamePair struct {
	A     string     `json:"a"`
	B     string     `json:"b"`
	Kind  Similarity `json:"kind"`
	Score float64    `json:"score"`
}

var folder = cases.Fold()

// NormalizeName collapses runs of whitespace, trims, applies NFKC and folds
// case. It is used for reporting only; team identity stays exact.
func NormalizeName(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	return folder.String(norm.NFKC.String(collapsed))
}

// SimilarNames returns every pair of teams whose names look like duplicates.
// Pairs are reported in team order. A threshold <= 0 disables the
// Jaro-Winkler comparison and only normalized duplicates are reported.
func SimilarNames(teams []Team, threshold float64) []NamePair {
	normalized := make([]string, len(teams))
	for i, t := range teams {
		normalized[i] = NormalizeName(t.Name)
	}

	var pairs []NamePair
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			if normalized[i] == normalized[j] {
				pairs = append(pairs, NamePair{
					A:     teams[i].Name,
					B:     teams[j].Name,
					Kind:  SameNormalized,
					Score: 1,
				})
				continue
			}
			if threshold <= 0 {
				continue
			}
			score := matchr.JaroWinkler(normalized[i], normalized[j], false)
			if score >= threshold {
				pairs = append(pairs, NamePair{
					A:     teams[i].Name,
					B:     teams[j].Name,
					Kind:  Close,
					Score: score,
				})
			}
		}
	}
	return pairs
}
