// Package storage provides JSON snapshots and the output directory layout.
//
// A Store writes the raw match list (matches.json) and the aggregated team view
// (teams.json) to a snapshot directory and can read them back. Every save is a
// full overwrite. An OutputTree owns the scorecard directory: it is wiped and
// recreated on each run, holds one folder per team, and hands out collision-free
// file names so a repeated fixture never overwrites an earlier scorecard.
package storage
