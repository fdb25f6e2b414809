package report

import (
	"context"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"github.com/panjf2000/ants/v2"
	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/pfrederiksen/cricket-results/internal/storage"
)

// Field places one line of text on the scorecard. X and Y are PDF user space
// points measured from the bottom-left corner of the page.
type Field struct {
	X    float64
	Y    float64
	Size float64
}

// Layout positions the five scorecard fields.
type Layout struct {
	Team          Field
	Opponent      Field
	SelfScore     Field
	OpponentScore Field
	Result        Field
}

// DefaultLayout fits the stock scorecard template.
var DefaultLayout = Layout{
	Team:          Field{X: 350, Y: 400, Size: 18},
	Opponent:      Field{X: 350, Y: 370, Size: 18},
	SelfScore:     Field{X: 350, Y: 340, Size: 18},
	OpponentScore: Field{X: 350, Y: 310, Size: 18},
	Result:        Field{X: 150, Y: 247, Size: 15},
}

const (
	scorecardFont = "Helvetica"
	scorecardExt  = ".pdf"
	templateBox   = "/MediaBox"

	// A4 in points, used when the template does not report its size.
	fallbackWidth  = 595.28
	fallbackHeight = 841.89

	DefaultWorkers = 4
)

// ScorecardOption configures a ScorecardRenderer.
type ScorecardOption func(*ScorecardRenderer)

// WithWorkers sets how many teams are rendered at once.
func WithWorkers(n int) ScorecardOption {
	return func(r *ScorecardRenderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLayout overrides the field positions.
func WithLayout(l Layout) ScorecardOption {
	return func(r *ScorecardRenderer) {
		r.layout = l
	}
}

// WithCompression toggles PDF stream compression. It is on by default.
func WithCompression(on bool) ScorecardOption {
	return func(r *ScorecardRenderer) {
		r.compress = on
	}
}

// ScorecardRenderer writes one PDF per team fixture from a template
type ScorecardRenderer struct {
	tree     *storage.OutputTree
	template string
	layout   Layout
	workers  int
	compress bool
}

// NewScorecardRenderer creates a renderer that fills template and writes into tree.
func NewScorecardRenderer(tree *storage.OutputTree, template string, opts ...ScorecardOption) *ScorecardRenderer {
	r := &ScorecardRenderer{
		tree:     tree,
		template: template,
		layout:   DefaultLayout,
		workers:  DefaultWorkers,
		compress: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Emit resets the output tree and writes every scorecard. Teams are rendered
// concurrently, one worker per team folder; the first failure stops the run.
func (r *ScorecardRenderer) Emit(ctx context.Context, teams []match.Team) ([]Artifact, error) {
	if err := r.CheckTemplate(); err != nil {
		return nil, err
	}

	if err := r.tree.Reset(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return nil, errors.Wrap(err, "creating scorecard worker pool")
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		perTeam  = make([][]Artifact, len(teams))
		folders  = teamFolders(teams)
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for i, team := range teams {
		i, team := i, team
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			artifacts, err := r.renderTeam(ctx, team, folders[i])
			if err != nil {
				fail(errors.Wrapf(err, "team %q", team.Name))
				return
			}
			perTeam[i] = artifacts
		}); err != nil {
			wg.Done()
			fail(errors.Wrap(err, "submitting scorecard task"))
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var artifacts []Artifact
	for _, a := range perTeam {
		artifacts = append(artifacts, a...)
	}
	return artifacts, nil
}

// CheckTemplate reports whether the template is a readable file.
func (r *ScorecardRenderer) CheckTemplate() error {
	info, err := os.Stat(r.template)
	if err != nil {
		return errors.Wrapf(err, "reading scorecard template %s", r.template)
	}
	if info.IsDir() {
		return errors.Newf("scorecard template %s is a directory", r.template)
	}
	return nil
}

func (r *ScorecardRenderer) renderTeam(ctx context.Context, team match.Team, folder string) ([]Artifact, error) {
	dir, err := r.tree.TeamDir(folder)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(team.Matches))
	for _, tm := range team.Matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := r.writeScorecard(dir, team.Name, tm)
		if err != nil {
			return nil, errors.Wrapf(err, "scorecard against %q", tm.Opponent)
		}
		artifacts = append(artifacts, Artifact{Kind: KindScorecard, Team: team.Name, Path: path})
	}
	return artifacts, nil
}

func (r *ScorecardRenderer) writeScorecard(dir, team string, tm match.TeamMatch) (string, error) {
	pdf, err := r.buildScorecard(team, tm)
	if err != nil {
		return "", err
	}

	f, err := storage.CreateUnique(dir, tm.Opponent, scorecardExt)
	if err != nil {
		return "", err
	}
	path := f.Name()

	if err := pdf.Output(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrapf(err, "writing %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", path)
	}
	return path, nil
}

// buildScorecard imports page one of the template and draws the fixture on it.
func (r *ScorecardRenderer) buildScorecard(team string, tm match.TeamMatch) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)

	imp := gofpdi.NewImporter()
	tpl, err := importTemplate(imp, pdf, r.template)
	if err != nil {
		return nil, err
	}

	width, height := templateSize(imp)
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
	imp.UseImportedTemplate(pdf, tpl, 0, 0, width, height)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	draw := func(field Field, text string) {
		pdf.SetFont(scorecardFont, "", field.Size)
		pdf.Text(field.X, height-field.Y, tr(text))
	}
	draw(r.layout.Team, team)
	draw(r.layout.Opponent, tm.Opponent)
	draw(r.layout.SelfScore, tm.SelfScore)
	draw(r.layout.OpponentScore, tm.OpponentScore)
	draw(r.layout.Result, tm.Result)

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(err, "drawing scorecard")
	}
	return pdf, nil
}

// importTemplate turns the importer's panics on unreadable input into errors.
func importTemplate(imp *gofpdi.Importer, pdf *fpdf.Fpdf, path string) (tpl int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf("importing scorecard template %s: %v", path, rec)
		}
	}()
	tpl = imp.ImportPage(pdf, path, 1, templateBox)
	if err := pdf.Error(); err != nil {
		return 0, errors.Wrapf(err, "importing scorecard template %s", path)
	}
	return tpl, nil
}

func templateSize(imp *gofpdi.Importer) (float64, float64) {
	sizes := imp.GetPageSizes()
	box, ok := sizes[1][templateBox]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return box["w"], box["h"]
}
