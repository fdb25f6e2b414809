// Package config loads and validates the run configuration.
//
// Values start from Defaults, are overlaid by an optional json5 file (and its
// .local sibling), and finally by command-line flags in the cli package.
package config
