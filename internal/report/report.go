package report

import (
	"context"

	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/pfrederiksen/cricket-results/internal/storage"
)

// Artifact is one file an Emitter wrote (or, for DryRun, would write).
type Artifact struct {
	Kind string `json:"kind"`
	Team string `json:"team,omitempty"`
	Path string `json:"path"`
}

// Artifact kinds.
const (
	KindWorkbook  = "workbook"
	KindScorecard = "scorecard"
)

// Emitter renders teams into output documents
type Emitter interface {
	// Emit writes the documents for teams and reports what was written.
	Emit(ctx context.Context, teams []match.Team) ([]Artifact, error)
}

// CountByTeam tallies artifacts of the given kind per team name.
func CountByTeam(artifacts []Artifact, kind string) map[string]int {
	counts := make(map[string]int)
	for _, a := range artifacts {
		if a.Kind == kind {
			counts[a.Team]++
		}
	}
	return counts
}

// teamFolders maps each team to its scorecard folder, in team order.
func teamFolders(teams []match.Team) []string {
	names := make([]string, len(teams))
	for i, team := range teams {
		names[i] = team.Name
	}
	return storage.FolderNames(names)
}
