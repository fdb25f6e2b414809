package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pfrederiksen/cricket-results/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(teams []string, scores []string, result string) string {
	var b strings.Builder
	b.WriteString(`<div class="match-score-block">`)
	for i, team := range teams {
		b.WriteString(`<div class="team"><div class="name-detail"><p class="name">` + team + `</p></div>`)
		b.WriteString(`<div class="score-detail">`)
		if i < len(scores) {
			b.WriteString(`<span class="score">` + scores[i] + `</span>`)
		}
		b.WriteString(`</div></div>`)
	}
	if result != "" {
		b.WriteString(`<div class="status-text"><span>` + result + `</span></div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func page(blocks ...string) string {
	return "<html><body>" + strings.Join(blocks, "\n") + "</body></html>"
}

func TestExtract_Fixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/match_results.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	matches, err := Extract(strings.NewReader(string(data)), DefaultSelectors)
	require.NoError(t, err)
	require.Len(t, matches, 5)

	assert.Equal(t, match.Match{
		Team1: "England", Team2: "South Africa",
		Team1Score: "311/8", Team2Score: "207",
		Result: "England won by 104 runs",
	}, matches[0])

	assert.Equal(t, match.Match{
		Team1: "Pakistan", Team2: "Sri Lanka",
		Result: "Match abandoned without a ball bowled",
	}, matches[1])

	assert.Equal(t, "29/2", matches[2].Team1Score)
	assert.Equal(t, "", matches[2].Team2Score)

	assert.Equal(t, "New Zealand", matches[4].Team1)
	assert.Equal(t, "Match tied (England won the Super Over)", matches[4].Result)
}

func TestExtract_ScoreFallback(t *testing.T) {
	tests := []struct {
		name      string
		scores    []string
		wantTeam1 string
		wantTeam2 string
	}{
		{"two scores", []string{"352/5", "316"}, "352/5", "316"},
		{"one score", []string{"29/2"}, "29/2", ""},
		{"no scores", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := page(block([]string{"India", "Australia"}, tt.scores, "India won by 36 runs"))

			matches, err := Extract(strings.NewReader(html), DefaultSelectors)
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, tt.wantTeam1, matches[0].Team1Score)
			assert.Equal(t, tt.wantTeam2, matches[0].Team2Score)
			assert.Equal(t, "India won by 36 runs", matches[0].Result)
		})
	}
}

func TestExtract_MoreThanTwoScores(t *testing.T) {
	html := page(`<div class="match-score-block">
		<div class="name-detail"><p class="name">India</p></div>
		<div class="name-detail"><p class="name">Australia</p></div>
		<div class="score-detail"><span class="score">1</span><span class="score">2</span><span class="score">3</span></div>
		<div class="status-text"><span>India won</span></div>
	</div>`)

	matches, err := Extract(strings.NewReader(html), DefaultSelectors)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Team1Score)
	assert.Empty(t, matches[0].Team2Score)
}

func TestExtract_MissingData(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantBlock int
		wantField string
	}{
		{
			name:      "one team name",
			html:      page(block([]string{"India"}, []string{"352/5"}, "India won")),
			wantBlock: 1,
			wantField: FieldTeamNames,
		},
		{
			name:      "blank team name",
			html:      page(block([]string{"India", "  "}, nil, "India won")),
			wantBlock: 1,
			wantField: FieldTeamNames,
		},
		{
			name: "missing result in second block",
			html: page(
				block([]string{"India", "Australia"}, nil, "India won"),
				block([]string{"England", "Pakistan"}, nil, ""),
			),
			wantBlock: 2,
			wantField: FieldResult,
		},
		{
			name: "blank result",
			html: page(`<div class="match-score-block">
				<div class="name-detail"><p class="name">India</p></div>
				<div class="name-detail"><p class="name">Australia</p></div>
				<div class="status-text"><span> </span></div>
			</div>`),
			wantBlock: 1,
			wantField: FieldResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := Extract(strings.NewReader(tt.html), DefaultSelectors)
			require.Error(t, err)
			assert.Nil(t, matches)

			var missing *MissingDataError
			require.True(t, errors.As(err, &missing), "error %v is not a MissingDataError", err)
			assert.Equal(t, tt.wantBlock, missing.Block)
			assert.Equal(t, tt.wantField, missing.Field)
		})
	}
}

func TestExtract_VerbatimText(t *testing.T) {
	html := page(block([]string{" India ", "Australia&amp;Co"}, []string{"352/5 (50 ov)", ""}, "India won by 36 runs"))

	matches, err := Extract(strings.NewReader(html), DefaultSelectors)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, " India ", matches[0].Team1)
	assert.Equal(t, "Australia&Co", matches[0].Team2)
	assert.Equal(t, "352/5 (50 ov)", matches[0].Team1Score)
}

func TestExtract_NoBlocks(t *testing.T) {
	matches, err := Extract(strings.NewReader(`<html><body><p>No matches</p></body></html>`), DefaultSelectors)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestExtract_CustomSelectors(t *testing.T) {
	html := `<table>
		<tr class="fixture"><td class="t">India</td><td class="t">Australia</td><td class="s">352/5</td><td class="s">316</td><td class="r">India won by 36 runs</td></tr>
	</table>`

	matches, err := Extract(strings.NewReader(html), Selectors{
		Block:  "tr.fixture",
		Team:   "td.t",
		Score:  "td.s",
		Result: "td.r",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Australia", matches[0].Team2)
	assert.Equal(t, "316", matches[0].Team2Score)
}

func TestSelectors_WithDefaults(t *testing.T) {
	sel := Selectors{Block: "div.fixture"}.withDefaults()
	assert.Equal(t, "div.fixture", sel.Block)
	assert.Equal(t, DefaultSelectors.Team, sel.Team)
	assert.Equal(t, DefaultSelectors.Score, sel.Score)
	assert.Equal(t, DefaultSelectors.Result, sel.Result)
}

func TestFetchMatches(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
		wantCount   int
	}{
		{
			name:        "successful fetch",
			htmlContent: page(block([]string{"India", "Australia"}, []string{"352/5", "316"}, "India won by 36 runs")),
			statusCode:  http.StatusOK,
			wantCount:   1,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			wantError:  true,
		},
		{
			name:        "empty page",
			htmlContent: `<html><body><p>No results yet</p></body></html>`,
			statusCode:  http.StatusOK,
			wantCount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "cricket-results") {
					t.Errorf("User-Agent = %q, should contain 'cricket-results'", userAgent)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			s := New(server.URL)
			matches, err := s.FetchMatches(context.Background())

			if tt.wantError {
				require.Error(t, err)
				var fetchErr *FetchError
				require.True(t, errors.As(err, &fetchErr))
				assert.Equal(t, tt.statusCode, fetchErr.StatusCode)
				assert.Equal(t, server.URL, fetchErr.URL)
				return
			}
			require.NoError(t, err)
			assert.Len(t, matches, tt.wantCount)
		})
	}
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url).Fetch(context.Background())
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
	assert.NotNil(t, fetchErr.Unwrap())
	assert.Contains(t, fetchErr.Error(), url)
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := New(server.URL, WithTimeout(20*time.Millisecond)).Fetch(context.Background())
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	s := New("")
	require.NotNil(t, s)
	assert.NotNil(t, s.client)
	assert.Equal(t, ResultsURL, s.URL())
	assert.Equal(t, DefaultSelectors, s.selectors)

	s = New("https://example.com/results", WithUserAgent("custom/1.0"), WithSelectors(Selectors{Block: "div.x"}))
	assert.Equal(t, "https://example.com/results", s.URL())
	assert.Equal(t, "custom/1.0", s.client.Header.Get("User-Agent"))
	assert.Equal(t, "div.x", s.selectors.Block)
	assert.Equal(t, DefaultSelectors.Team, s.selectors.Team)
}

func TestFetchError_Message(t *testing.T) {
	err := &FetchError{URL: "https://example.com", StatusCode: 503}
	assert.Equal(t, "fetching https://example.com: unexpected status code: 503", err.Error())

	missing := &MissingDataError{Block: 4, Field: FieldResult}
	assert.Equal(t, "match block 4: missing result", missing.Error())
}
