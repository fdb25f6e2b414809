// Package report renders aggregated teams into output documents.
//
// Two Emitters consume the same []match.Team independently: SheetWriter builds
// one xlsx workbook with a sheet per team, and ScorecardRenderer overlays each
// fixture onto a template PDF, one file per team per opponent. DryRun prints
// what either would write without touching the filesystem.
package report
