package scraper

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/cricket-results/internal/match"
)

// Selectors locate match data in the results markup. Team, Score and Result
// are evaluated inside each Block.
type Selectors struct {
	Block  string `json:"block"`
	Team   string `json:"team"`
	Score  string `json:"score"`
	Result string `json:"result"`
}

// DefaultSelectors match the ESPNcricinfo results listing markup.
var DefaultSelectors = Selectors{
	Block:  "div.match-score-block",
	Team:   "div.name-detail > p.name",
	Score:  "div.score-detail > span.score",
	Result: "div.status-text > span",
}

func (s Selectors) withDefaults() Selectors {
	if s.Block == "" {
		s.Block = DefaultSelectors.Block
	}
	if s.Team == "" {
		s.Team = DefaultSelectors.Team
	}
	if s.Score == "" {
		s.Score = DefaultSelectors.Score
	}
	if s.Result == "" {
		s.Result = DefaultSelectors.Result
	}
	return s
}

// Scraper handles fetching and parsing a cricket results page
type Scraper struct {
	client    *resty.Client
	url       string
	selectors Selectors
}

// New creates a new Scraper for the given results page. An empty url falls
// back to ResultsURL.
func New(url string, opts ...Option) *Scraper {
	if url == "" {
		url = ResultsURL
	}
	s := &Scraper{
		client: resty.New().
			SetTimeout(Timeout).
			SetHeader("User-Agent", UserAgent),
		url:       url,
		selectors: DefaultSelectors,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchMatches fetches the results page and extracts its matches
func (s *Scraper) FetchMatches(ctx context.Context) ([]match.Match, error) {
	body, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.Extract(bytes.NewReader(body))
}

// Extract parses markup into matches using the scraper's selectors.
func (s *Scraper) Extract(r io.Reader) ([]match.Match, error) {
	return Extract(r, s.selectors)
}

// Extract parses markup into one match.Match per match block, in document
// order. A block with fewer than two team names or no result text fails with
// *MissingDataError. Scores are optional: two are assigned positionally, a
// single score belongs to Team1, and zero or more than two leave both empty.
func Extract(r io.Reader, sel Selectors) ([]match.Match, error) {
	sel = sel.withDefaults()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}

	matches := make([]match.Match, 0)
	var parseErr error

	doc.Find(sel.Block).EachWithBreak(func(i int, block *goquery.Selection) bool {
		m, err := extractBlock(block, sel, i+1)
		if err != nil {
			parseErr = err
			return false
		}
		matches = append(matches, m)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return matches, nil
}

// extractBlock reads a single match block; n is its 1-based position.
func extractBlock(block *goquery.Selection, sel Selectors, n int) (match.Match, error) {
	var m match.Match

	teams := block.Find(sel.Team)
	if teams.Length() < 2 {
		return m, &MissingDataError{Block: n, Field: FieldTeamNames}
	}
	m.Team1 = teams.Eq(0).Text()
	m.Team2 = teams.Eq(1).Text()
	if strings.TrimSpace(m.Team1) == "" || strings.TrimSpace(m.Team2) == "" {
		return m, &MissingDataError{Block: n, Field: FieldTeamNames}
	}

	// Live and abandoned fixtures often carry fewer score spans than teams.
	scores := block.Find(sel.Score)
	switch scores.Length() {
	case 2:
		m.Team1Score = scores.Eq(0).Text()
		m.Team2Score = scores.Eq(1).Text()
	case 1:
		m.Team1Score = scores.Eq(0).Text()
	}

	result := block.Find(sel.Result).First()
	if result.Length() == 0 {
		return m, &MissingDataError{Block: n, Field: FieldResult}
	}
	m.Result = result.Text()
	if strings.TrimSpace(m.Result) == "" {
		return m, &MissingDataError{Block: n, Field: FieldResult}
	}

	return m, nil
}
