package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"audesc/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("State directory", dir)
	if !result.Passed {
		t.Fatalf("expected writable temp dir to pass, got %+v", result)
	}

	result = CheckDirectoryAccess("State directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatalf("expected missing directory to fail, got %+v", result)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = CheckDirectoryAccess("State directory", file)
	if result.Passed {
		t.Fatalf("expected regular file to fail, got %+v", result)
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	result := CheckDiskSpace("Free disk space", dir, 0)
	if !result.Passed {
		t.Fatalf("expected unconstrained check to pass, got %+v", result)
	}

	// No filesystem has an exbibyte free.
	result = CheckDiskSpace("Free disk space", dir, 1<<30)
	if result.Passed {
		t.Fatalf("expected impossible requirement to fail, got %+v", result)
	}
}

func TestRunAllCoversConfiguredChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(context.Background(), cfg)

	names := make(map[string]Result, len(results))
	for _, result := range results {
		names[result.Name] = result
	}
	for _, want := range []string{
		"State directory", "Log directory", "Free disk space",
		"Available memory", "FFmpeg", "FFprobe", "TTS engine",
	} {
		if _, ok := names[want]; !ok {
			t.Fatalf("missing check %q in %+v", want, results)
		}
	}
	if !names["State directory"].Passed {
		t.Fatalf("expected state directory check to pass, got %+v", names["State directory"])
	}
}
