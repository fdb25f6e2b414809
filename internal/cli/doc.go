// Package cli implements the command-line interface for cricket-results.
//
// The cli package provides the Cobra-based root command: it layers defaults, an
// optional json5 config file and flags into a config.Config, builds the scraper,
// snapshot store and output emitters, runs the pipeline, and prints a per-team
// summary as a table or JSON.
package cli
