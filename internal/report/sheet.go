package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/xuri/excelize/v2"
)

// MaxSheetName is the longest sheet name the xlsx format accepts.
const MaxSheetName = 31

// Header is the first row of every team sheet.
var Header = []string{"Opponent", "Self Score", "Opp Score", "Result"}

const defaultSheet = "Sheet1"

// SheetWriter writes a workbook with one sheet per team
type SheetWriter struct {
	path string
}

// NewSheetWriter creates a SheetWriter that saves to path.
func NewSheetWriter(path string) *SheetWriter {
	return &SheetWriter{path: path}
}

// Emit builds the workbook and saves it, overwriting any existing file.
func (w *SheetWriter) Emit(ctx context.Context, teams []match.Team) ([]Artifact, error) {
	f, err := Workbook(teams)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating workbook directory %s", dir)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return nil, errors.Wrapf(err, "writing workbook %s", w.path)
	}

	return []Artifact{{Kind: KindWorkbook, Path: w.path}}, nil
}

// Workbook builds the in-memory workbook for teams. Sheets follow team order;
// each has the header row and one row per fixture.
func Workbook(teams []match.Team) (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := newSheetStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	names := SheetNames(teams)
	for i, team := range teams {
		sheet := names[i]
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "adding sheet for team %q", team.Name)
		}

		if err := writeTeamSheet(f, sheet, team, styles); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "writing sheet for team %q", team.Name)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

type sheetStyles struct {
	header   int
	opponent int
}

func mediumBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	border := make([]excelize.Border, len(sides))
	for i, side := range sides {
		border[i] = excelize.Border{Type: side, Color: "000000", Style: 2}
	}
	return border
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"ADD8E6"}},
		Font:   &excelize.Font{Bold: true, Underline: "single", Size: 12},
		Border: mediumBorder(),
	})
	if err != nil {
		return sheetStyles{}, errors.Wrap(err, "creating header style")
	}

	opponent, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
		Border: mediumBorder(),
	})
	if err != nil {
		return sheetStyles{}, errors.Wrap(err, "creating opponent style")
	}

	return sheetStyles{header: header, opponent: opponent}, nil
}

func writeTeamSheet(f *excelize.File, sheet string, team match.Team, styles sheetStyles) error {
	for col, title := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, title); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", styles.header); err != nil {
		return err
	}

	for i, tm := range team.Matches {
		row := i + 2
		values := []string{tm.Opponent, tm.SelfScore, tm.OpponentScore, tm.Result}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.opponent); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "C", 18); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "D", "D", 48)
}

// SheetNames returns a valid, unique sheet name per team, in team order.
// Characters the format forbids become "_", names are cut to MaxSheetName
// runes, and case-insensitive clashes get a " (n)" suffix.
func SheetNames(teams []match.Team) []string {
	names := make([]string, len(teams))
	used := make(map[string]bool)

	for i, team := range teams {
		base := sanitizeSheetName(team.Name)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, MaxSheetName-utf8.RuneCountInString(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)

	if strings.HasPrefix(name, "'") {
		name = "_" + name[1:]
	}
	name = truncateRunes(name, MaxSheetName)
	if strings.HasSuffix(name, "'") {
		name = name[:len(name)-1] + "_"
	}
	if strings.TrimSpace(name) == "" {
		return "Team"
	}
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
