package scraper

import (
	"context"
	"time"
)

const (
	// ResultsURL is the default results listing: ICC Cricket World Cup 2019.
	ResultsURL = "https://www.espncricinfo.com/series/icc-cricket-world-cup-2019-1144415/match-results"
	UserAgent  = "cricket-results/1.0 (github.com/pfrederiksen/cricket-results)"
	Timeout    = 30 * time.Second
)

// Option configures a Scraper.
type Option func(*Scraper)

// WithTimeout sets the HTTP timeout for the page fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.SetTimeout(d)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.client.SetHeader("User-Agent", ua)
		}
	}
}

// WithSelectors overrides the CSS selectors used to find match data.
func WithSelectors(sel Selectors) Option {
	return func(s *Scraper) {
		s.selectors = sel.withDefaults()
	}
}

// URL returns the page the scraper fetches.
func (s *Scraper) URL() string {
	return s.url
}

// Fetch retrieves the raw markup of the results page.
// Transport errors and non-2xx responses are returned as *FetchError.
func (s *Scraper) Fetch(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: err}
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &FetchError{URL: s.url, StatusCode: code}
	}

	return resp.Body(), nil
}
