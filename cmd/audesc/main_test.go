package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"audesc/internal/project"
	"audesc/internal/timeline"
)

type cliTestEnv struct {
	configPath  string
	projectPath string
	baseDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\nstate_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		configPath:  configPath,
		projectPath: filepath.Join(base, "film.adproj"),
		baseDir:     base,
	}
}

// writeProject persists a project file directly, bypassing asset probing.
func (env *cliTestEnv) writeProject(t *testing.T, proj timeline.Project) {
	t.Helper()
	if err := project.Save(env.projectPath, proj); err != nil {
		t.Fatalf("save project: %v", err)
	}
}

func (env *cliTestEnv) readProject(t *testing.T) timeline.Project {
	t.Helper()
	proj, err := project.Load(env.projectPath)
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	return proj
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--config", env.configPath, "--project", env.projectPath))
	err := cmd.Execute()
	return buf.String(), err
}

func sampleCLIProject() timeline.Project {
	return timeline.Project{
		Video: &timeline.VideoAsset{Path: "/media/film.mp4", Duration: 60},
		Cues: []timeline.Cue{
			{ID: "cue-a", Start: 5, Audio: timeline.AudioAsset{Path: "/media/a.wav", Duration: 4}, Label: "She enters"},
			{ID: "cue-b", Start: 7, Audio: timeline.AudioAsset{Path: "/media/b.wav", Duration: 3}},
		},
		Output: timeline.OutputSettings{
			OutputPath:      "/media/film_described.mp4",
			OriginalGain:    1,
			DescriptionGain: 1,
		},
	}
}
