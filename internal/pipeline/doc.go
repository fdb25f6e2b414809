// Package pipeline runs one scrape: fetch the results page, extract matches,
// aggregate them into teams, persist the snapshots and render every output.
//
// Each stage failure is returned as a *StageError naming the stage, and each
// stage's duration is recorded on the run's logger.Metrics.
package pipeline
