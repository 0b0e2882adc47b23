package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audesc/internal/config"
	"audesc/internal/timeline"
)

func TestProjectShowListsCues(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	out, err := env.run(t, "project", "show")
	if err != nil {
		t.Fatalf("project show: %v\n%s", err, out)
	}
	for _, want := range []string{"/media/film.mp4", "00:01:00", "cue-a", "She enters"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCueListAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	out, err := env.run(t, "cue", "list")
	if err != nil {
		t.Fatalf("cue list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cue-b") {
		t.Fatalf("expected cue-b listed:\n%s", out)
	}

	if out, err := env.run(t, "cue", "remove", "cue-b"); err != nil {
		t.Fatalf("cue remove: %v\n%s", err, out)
	}
	proj := env.readProject(t)
	if len(proj.Cues) != 1 || proj.Cues[0].ID != "cue-a" {
		t.Fatalf("unexpected cues after remove: %+v", proj.Cues)
	}

	if _, err := env.run(t, "cue", "remove", "missing"); err == nil {
		t.Fatal("expected error removing unknown cue")
	}
}

func TestCueEditLabel(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	out, err := env.run(t, "cue", "edit", "cue-b", "--label", "He leaves")
	if err != nil {
		t.Fatalf("cue edit: %v\n%s", err, out)
	}
	proj := env.readProject(t)
	cue, ok := proj.CueByID("cue-b")
	if !ok || cue.Label != "He leaves" {
		t.Fatalf("label not updated: %+v", cue)
	}

	if _, err := env.run(t, "cue", "edit", "cue-b"); err == nil {
		t.Fatal("expected error when no change flags given")
	}
}

func TestSRTImportCreatesDrafts(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	srtPath := filepath.Join(env.baseDir, "narration.srt")
	srt := "1\n00:00:10,000 --> 00:00:12,000\nShe opens the door.\n\n" +
		"2\n00:00:30,500 --> 00:00:33,000\nHe follows her inside.\n\n" +
		"3\n00:02:00,000 --> 00:02:05,000\nBeyond the end of the video.\n"
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}

	out, err := env.run(t, "srt", "import", srtPath)
	if err != nil {
		t.Fatalf("srt import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 2 draft cues") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Skipped 1 entries") {
		t.Fatalf("expected out-of-range entry skipped:\n%s", out)
	}

	proj := env.readProject(t)
	if proj.DraftCueCount() != 2 {
		t.Fatalf("expected 2 drafts, got %d", proj.DraftCueCount())
	}
}

func TestPlanShow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	out, err := env.run(t, "plan", "show")
	if err != nil {
		t.Fatalf("plan show: %v\n%s", err, out)
	}
	// Cues at [5,9) and [7,10) produce silent/active alternation over 60s.
	if !strings.Contains(out, "segments covering 00:01:00") {
		t.Fatalf("unexpected plan summary:\n%s", out)
	}
	if !strings.Contains(out, "cue-a=") {
		t.Fatalf("expected per-cue gains listed:\n%s", out)
	}
}

func TestProjectClearRequiresForce(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	if _, err := env.run(t, "project", "clear"); err == nil {
		t.Fatal("expected refusal without --force")
	}
	if out, err := env.run(t, "project", "clear", "--force"); err != nil {
		t.Fatalf("project clear: %v\n%s", err, out)
	}
	proj := env.readProject(t)
	if proj.Video != nil || len(proj.Cues) != 0 {
		t.Fatalf("expected empty project, got %+v", proj)
	}
}

func TestProjectSetUpdatesGains(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	out, err := env.run(t, "project", "set", "--original-gain", "0.6", "--description-gain", "1.5")
	if err != nil {
		t.Fatalf("project set: %v\n%s", err, out)
	}
	proj := env.readProject(t)
	if proj.Output.OriginalGain != 0.6 || proj.Output.DescriptionGain != 1.5 {
		t.Fatalf("gains not updated: %+v", proj.Output)
	}

	if _, err := env.run(t, "project", "set", "--original-gain", "-1"); err == nil {
		t.Fatal("expected rejection of negative gain")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "fresh-config.toml")
	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config written: %v", err)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	out, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "state_dir") {
		t.Fatalf("expected effective config printed:\n%s", out)
	}
}

func TestResolvePreviewWindow(t *testing.T) {
	cfgVal := config.Default()
	cfgVal.Render.PreviewSeconds = 10
	cfg := &cfgVal
	snapshot := sampleCLIProject()

	window, err := resolvePreviewWindow(nil, snapshot, "00:00:05", 0, "", cfg)
	if err != nil {
		t.Fatalf("resolve window: %v", err)
	}
	if window.Start != 5 || window.End != 15 {
		t.Fatalf("unexpected window %+v", window)
	}

	// Centered on a cue: padded before the start and after the end.
	window, err = resolvePreviewWindow(nil, snapshot, "", 0, "cue-a", cfg)
	if err != nil {
		t.Fatalf("resolve cue window: %v", err)
	}
	if window.Start != 3 || window.End < 11 {
		t.Fatalf("unexpected cue window %+v", window)
	}

	// Clamped to the video duration.
	window, err = resolvePreviewWindow(nil, snapshot, "55", 0, "", cfg)
	if err != nil {
		t.Fatalf("resolve clamped window: %v", err)
	}
	if window.End != 60 {
		t.Fatalf("expected clamp to end, got %+v", window)
	}

	if _, err := resolvePreviewWindow(nil, snapshot, "", 0, "", cfg); err == nil {
		t.Fatal("expected error without --start or --cue")
	}
	if _, err := resolvePreviewWindow(nil, timeline.Project{}, "5", 0, "", cfg); err == nil {
		t.Fatal("expected error without video")
	}
}

func TestProjectExportAndImport(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeProject(t, sampleCLIProject())

	dest := filepath.Join(env.baseDir, "copy.adproj")
	out, err := env.run(t, "project", "export", dest)
	if err != nil {
		t.Fatalf("project export: %v\n%s", err, out)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}

	// Importing over an existing project needs --force.
	if _, err := env.run(t, "project", "import", dest); err == nil {
		t.Fatal("expected import to refuse overwriting the project")
	}
	out, err = env.run(t, "project", "import", dest, "--force")
	if err != nil {
		t.Fatalf("project import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2 cues") {
		t.Fatalf("expected cue count in output, got %q", out)
	}

	proj := env.readProject(t)
	if len(proj.Cues) != 2 || proj.Cues[0].ID != "cue-a" {
		t.Fatalf("unexpected imported project: %+v", proj)
	}
}
