package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTeams(t *testing.T) []match.Team {
	t.Helper()
	teams, err := match.Aggregate([]match.Match{
		{Team1: "India", Team2: "Australia", Team1Score: "352/5", Team2Score: "316", Result: "India won by 36 runs"},
		{Team1: "England", Team2: "India", Team1Score: "337/7", Team2Score: "306/5", Result: "England won by 31 runs"},
		{Team1: "Australia", Team2: "England", Result: "No result"},
	})
	require.NoError(t, err)
	return teams
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook(sampleTeams(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"India", "Australia", "England"}, f.GetSheetList())

	rows, err := f.GetRows("India")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Australia", "352/5", "316", "India won by 36 runs"}, rows[1])
	assert.Equal(t, []string{"England", "306/5", "337/7", "England won by 31 runs"}, rows[2])

	rows, err = f.GetRows("England")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Australia", "", "", "No result"}, rows[2])
}

func TestWorkbook_Styles(t *testing.T) {
	f, err := Workbook(sampleTeams(t))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellStyle("India", "A1")
	require.NoError(t, err)
	lastHeader, err := f.GetCellStyle("India", "D1")
	require.NoError(t, err)
	opponent, err := f.GetCellStyle("India", "A2")
	require.NoError(t, err)
	score, err := f.GetCellStyle("India", "B2")
	require.NoError(t, err)

	assert.NotZero(t, header)
	assert.Equal(t, header, lastHeader)
	assert.NotZero(t, opponent)
	assert.NotEqual(t, header, opponent)
	assert.Zero(t, score)
}

func TestWorkbook_ScoresStayText(t *testing.T) {
	teams := []match.Team{{
		Name:    "India",
		Matches: []match.TeamMatch{{Opponent: "Australia", SelfScore: "316", OpponentScore: "352", Result: "lost"}},
	}}

	f, err := Workbook(teams)
	require.NoError(t, err)
	defer f.Close()

	typ, err := f.GetCellType("India", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, typ)
}

func TestWorkbook_NoTeams(t *testing.T) {
	f, err := Workbook(nil)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{defaultSheet}, f.GetSheetList())
}

func TestSheetWriter_Emit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "WorldCup.xlsx")

	artifacts, err := NewSheetWriter(path).Emit(context.Background(), sampleTeams(t))
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, Artifact{Kind: KindWorkbook, Path: path}, artifacts[0])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 3)

	value, err := f.GetCellValue("Australia", "A2")
	require.NoError(t, err)
	assert.Equal(t, "India", value)
}

func TestSheetWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSheetWriter(filepath.Join(t.TempDir(), "x.xlsx")).Emit(ctx, sampleTeams(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSheetNames(t *testing.T) {
	long := strings.Repeat("Papua New Guinea ", 3)

	teams := []match.Team{
		{Name: "India"},
		{Name: "india"},
		{Name: "Trinidad/Tobago"},
		{Name: "[Qualifier]: A?"},
		{Name: long},
		{Name: long + "B"},
		{Name: "'Quoted'"},
		{Name: "   "},
		{Name: "India"},
	}

	names := SheetNames(teams)
	require.Len(t, names, len(teams))

	assert.Equal(t, "India", names[0])
	assert.Equal(t, "india (2)", names[1])
	assert.Equal(t, "Trinidad_Tobago", names[2])
	assert.Equal(t, "_Qualifier__ A_", names[3])
	assert.Equal(t, MaxSheetName, utf8.RuneCountInString(names[4]))
	assert.Equal(t, MaxSheetName, utf8.RuneCountInString(names[5]))
	assert.True(t, strings.HasSuffix(names[5], " (2)"), names[5])
	assert.Equal(t, "_Quoted_", names[6])
	assert.Equal(t, "Team", names[7])
	assert.Equal(t, "India (3)", names[8])

	seen := make(map[string]bool)
	for _, n := range names {
		key := strings.ToLower(n)
		assert.False(t, seen[key], "duplicate sheet name %q", n)
		seen[key] = true
	}
}
