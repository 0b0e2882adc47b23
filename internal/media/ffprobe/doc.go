// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no audesc-specific dependencies and could be extracted as a
// standalone library. Inspect executes ffprobe and returns the parsed Result;
// Probe condenses a Result into the path/duration/stream facts the timeline
// needs to validate an asset reference.
package ffprobe
