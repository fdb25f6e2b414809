package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/cricket-results/internal/logger"
	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/pfrederiksen/cricket-results/internal/pipeline"
	"github.com/pfrederiksen/cricket-results/internal/report"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// TeamSummary is one row of the run summary.
type TeamSummary struct {
	Team       string `json:"team"`
	Matches    int    `json:"matches"`
	Scorecards int    `json:"scorecards"`
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt    time.Time         `json:"checked_at"`
	Source       string            `json:"source"`
	DryRun       bool              `json:"dry_run,omitempty"`
	MatchCount   int               `json:"match_count"`
	Teams        []TeamSummary     `json:"teams"`
	Workbook     string            `json:"workbook,omitempty"`
	SimilarNames []match.NamePair  `json:"similar_names,omitempty"`
	NewMatches   []match.Match     `json:"new_matches,omitempty"`
	Changes      []match.Change    `json:"changes,omitempty"`
	Metrics      *logger.Snapshot  `json:"metrics,omitempty"`
	Artifacts    []report.Artifact `json:"artifacts,omitempty"`
}

// NewOutputResult summarises a finished run.
func NewOutputResult(source string, res *pipeline.Result, dryRun bool) *OutputResult {
	scorecards := report.CountByTeam(res.Artifacts, report.KindScorecard)

	out := &OutputResult{
		CheckedAt:    time.Now().UTC(),
		Source:       source,
		DryRun:       dryRun,
		MatchCount:   len(res.Matches),
		Teams:        make([]TeamSummary, 0, len(res.Teams)),
		SimilarNames: res.SimilarNames,
		Artifacts:    res.Artifacts,
	}
	for _, team := range res.Teams {
		out.Teams = append(out.Teams, TeamSummary{
			Team:       team.Name,
			Matches:    len(team.Matches),
			Scorecards: scorecards[team.Name],
		})
	}
	if res.Diff != nil {
		out.NewMatches = res.Diff.NewMatches
		out.Changes = res.Diff.Changes
	}
	for _, a := range res.Artifacts {
		if a.Kind == report.KindWorkbook {
			out.Workbook = a.Path
		}
	}
	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return errors.Newf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	data, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding summary")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if len(result.Teams) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Team", "Matches", "Scorecards"})

	var matches, scorecards int
	for _, team := range result.Teams {
		t.AppendRow(table.Row{team.Team, team.Matches, team.Scorecards})
		matches += team.Matches
		scorecards += team.Scorecards
	}
	t.AppendFooter(table.Row{"Total", matches, scorecards})
	t.SetStyle(table.StyleRounded)
	t.Render()

	label := "Wrote"
	if result.DryRun {
		label = "Would write"
	}
	fmt.Fprintf(w, "\n%d matches across %d teams.\n", result.MatchCount, len(result.Teams))
	if result.Workbook != "" {
		fmt.Fprintf(w, "%s workbook %s and %d scorecards.\n", label, result.Workbook, scorecards)
	}

	if len(result.NewMatches) > 0 || len(result.Changes) > 0 {
		fmt.Fprintf(w, "%d new and %d updated since the last run.\n", len(result.NewMatches), len(result.Changes))
		if verbose {
			for _, m := range result.NewMatches {
				fmt.Fprintf(w, "  NEW: %s v %s: %s\n", m.Team1, m.Team2, m.Result)
			}
			for _, c := range result.Changes {
				fmt.Fprintf(w, "  %s: %s v %s: %q -> %q\n", strings.ToUpper(c.Kind), c.Match.Team1, c.Match.Team2, c.OldValue, c.NewValue)
			}
		}
	}

	for _, pair := range result.SimilarNames {
		fmt.Fprintf(w, "Warning: %q and %q look like the same team (%s, %.2f)\n", pair.A, pair.B, pair.Kind, pair.Score)
	}

	if verbose && result.Metrics != nil {
		fmt.Fprintln(w)
		writeTimings(w, result.Metrics)
	}

	return nil
}

func writeTimings(w io.Writer, snap *logger.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Stage", "Duration"})
	for _, stage := range []pipeline.Stage{
		pipeline.StageFetch,
		pipeline.StageParse,
		pipeline.StageAggregate,
		pipeline.StagePersist,
		pipeline.StageRender,
	} {
		timing, ok := snap.Timings["stage."+string(stage)]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{string(stage), timing.Total.Round(time.Millisecond).String()})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
