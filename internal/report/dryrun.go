package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/pfrederiksen/cricket-results/internal/storage"
)

// DryRun prints the workbook sheets and scorecard files a real run would
// produce, without writing anything.
type DryRun struct {
	w         io.Writer
	excelPath string
	dataDir   string
}

// NewDryRun creates a DryRun that prints to w. A nil w prints to stdout.
func NewDryRun(w io.Writer, excelPath, dataDir string) *DryRun {
	if w == nil {
		w = os.Stdout
	}
	return &DryRun{w: w, excelPath: excelPath, dataDir: dataDir}
}

// Emit prints the plan and returns the artifacts it would write.
func (d *DryRun) Emit(ctx context.Context, teams []match.Team) ([]Artifact, error) {
	artifacts := []Artifact{{Kind: KindWorkbook, Path: d.excelPath}}

	fmt.Fprintf(d.w, "--- Workbook %s ---\n", d.excelPath)
	for i, sheet := range SheetNames(teams) {
		fmt.Fprintf(d.w, "sheet %q (%d rows)\n", sheet, len(teams[i].Matches))
	}

	fmt.Fprintf(d.w, "\n--- Scorecards in %s ---\n", d.dataDir)
	folders := teamFolders(teams)
	for i, team := range teams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Join(d.dataDir, folders[i])
		seen := make(map[string]int)
		for _, tm := range team.Matches {
			base := storage.SafeName(tm.Opponent)
			seen[base]++
			path := filepath.Join(dir, storage.UniqueName(base, scorecardExt, seen[base]))

			fmt.Fprintf(d.w, "%s: %s %s vs %s %s (%s)\n",
				path, team.Name, tm.SelfScore, tm.Opponent, tm.OpponentScore, tm.Result)
			artifacts = append(artifacts, Artifact{Kind: KindScorecard, Team: team.Name, Path: path})
		}
	}

	return artifacts, nil
}
