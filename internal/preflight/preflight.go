// Package preflight runs startup checks before editing or rendering begins:
// tool availability, directory access, free disk space, and available memory.
package preflight

import (
	"context"

	"audesc/internal/config"
	"audesc/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDiskSpace("Free disk space", cfg.Paths.StateDir, cfg.Render.MinFreeSpaceGiB))
	results = append(results, CheckMemory())

	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		if !status.Available && status.Optional {
			result.Passed = true
		}
		results = append(results, result)
	}
	return results
}

// CheckSystemDeps evaluates the external tools the mixer shells out to. Both
// startup and the status command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpegBinary,
			Description: "Required for mixing and rendering",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobeBinary,
			Description: "Required for media inspection",
		},
		{
			Name:        "TTS engine",
			Command:     cfg.Tools.TTSBinary,
			Description: "Synthesizes description audio from imported subtitles",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
