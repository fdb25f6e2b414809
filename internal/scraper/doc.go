// Package scraper provides HTTP fetching and HTML parsing for cricket results pages.
//
// The scraper package fetches a tournament results listing (by default the
// ESPNcricinfo match-results page for a series) and extracts one match.Match per
// match block: the two team names, up to two score strings and the result line.
// Team names and the result are mandatory; score text is optional and degrades
// to empty strings when the page carries fewer than two scores.
package scraper
