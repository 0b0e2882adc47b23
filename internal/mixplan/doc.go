// Package mixplan derives the deterministic mixing program for a project
// snapshot.
//
// Resolve converts the cue sequence into non-overlapping activity intervals
// via a boundary sweep. Build turns those intervals into a gap-free partition
// of gain-automation segments covering the whole timeline, applying the fixed
// ducking attenuation and the summed-gain clamp policy. Plans are recomputed
// before every render and never persisted.
package mixplan
