// Package main hosts the audesc CLI entrypoint and command graph.
//
// The Cobra-based command tree manages description projects on disk: creating
// and editing cue timelines, importing subtitles, synthesizing narration,
// inspecting mix plans, and driving full and preview renders through ffmpeg.
// It centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
