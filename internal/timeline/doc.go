// Package timeline holds the project timeline model: the video asset, the
// ordered description cues, and the output settings.
//
// The Model is the single mutable shared resource in the engine. Mutations are
// validate-then-apply and keep the cue sequence sorted by start time with ties
// broken by insertion order. Everything else in the engine works from
// Snapshot copies, so renders and autosaves are isolated from concurrent
// edits.
package timeline
