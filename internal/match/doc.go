// Package match provides the result types for a cricket tournament and the
// per-team aggregation of a flat match list.
//
// A Match is one result as it appears on the source page. Aggregate pivots a
// slice of Matches into Teams, each owning its fixtures in source order with
// the scores reordered so that "self" is always the owning team. Team identity
// is exact string equality on the extracted name; SimilarNames can be used to
// flag names that probably refer to the same side.
package match
