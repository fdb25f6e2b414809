package match

import (
	"crypto/sha1"
	"fmt"
)

// Change kinds reported by Diff.
const (
	ChangeScore  = "score"
	ChangeResult = "result"
)

// Change is an update to a fixture that was already in the previous snapshot.
type Change struct {
	Key      string `json:"key"`
	Kind     string `json:"kind"`
	Match    Match  `json:"match"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DiffResult contains the results of comparing two match lists
type DiffResult struct {
	NewMatches []Match  `json:"new_matches"`
	Changes    []Change `json:"changes"`
}

// FixtureKey creates a deterministic ID for the n-th (1-based) meeting of
// team1 and team2 in page order. Names are compared exactly.
func FixtureKey(team1, team2 string, n int) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%d", team1, team2, n)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Keys returns the fixture key of every match, in order.
func Keys(matches []Match) []string {
	seen := make(map[[2]string]int)
	keys := make([]string, len(matches))
	for i, m := range matches {
		pair := [2]string{m.Team1, m.Team2}
		seen[pair]++
		keys[i] = FixtureKey(m.Team1, m.Team2, seen[pair])
	}
	return keys
}

// Diff compares current matches against a previous snapshot. Matches whose key
// is not in previous are new; matches present in both are checked for score and
// result changes. Output follows current's order.
func Diff(previous, current []Match) *DiffResult {
	result := &DiffResult{
		NewMatches: make([]Match, 0),
		Changes:    make([]Change, 0),
	}

	prevKeys := Keys(previous)
	byKey := make(map[string]Match, len(previous))
	for i, m := range previous {
		byKey[prevKeys[i]] = m
	}

	for i, key := range Keys(current) {
		cur := current[i]
		prev, exists := byKey[key]
		if !exists {
			result.NewMatches = append(result.NewMatches, cur)
			continue
		}
		result.Changes = append(result.Changes, detectChanges(key, prev, cur)...)
	}

	return result
}

func scoreLine(m Match) string {
	return fmt.Sprintf("%s v %s", m.Team1Score, m.Team2Score)
}

func detectChanges(key string, previous, current Match) []Change {
	var changes []Change

	if previous.Team1Score != current.Team1Score || previous.Team2Score != current.Team2Score {
		changes = append(changes, Change{
			Key:      key,
			Kind:     ChangeScore,
			Match:    current,
			OldValue: scoreLine(previous),
			NewValue: scoreLine(current),
		})
	}

	if previous.Result != current.Result {
		changes = append(changes, Change{
			Key:      key,
			Kind:     ChangeResult,
			Match:    current,
			OldValue: previous.Result,
			NewValue: current.Result,
		})
	}

	return changes
}
