package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qryxip/cargo-scripts/internal/script"
)

// TestInitWorkspace verifies the files a new workspace starts with.
func TestInitWorkspace(t *testing.T) {
	t.Parallel()
	e, _, stderr := testEnv(t, "")

	if err := run(context.Background(), []string{"init-workspace", "ws"}, e); err != nil {
		t.Fatalf("init-workspace: %v\nstderr: %s", err, stderr.String())
	}

	ws := filepath.Join(e.cwd, "ws")
	for rel, want := range map[string]string{
		"Cargo.toml":           "[workspace]\nmembers = [\"template\"]\nexclude = []\n",
		"template/Cargo.toml":  "[package]\nname = \"template\"\nversion = \"0.0.0\"\nedition = \"2021\"\npublish = false\n",
		"template/src/main.rs": script.TemplateSource,
	} {
		got, err := os.ReadFile(filepath.Join(ws, rel))
		if err != nil {
			t.Errorf("reading %s: %v", rel, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}

	if _, err := os.Stat(filepath.Join(ws, "cargo-scripts.toml")); err != nil {
		t.Errorf("cargo-scripts.toml not written: %v", err)
	}
}

// TestInitWorkspaceDryRun verifies that --dry-run only logs.
func TestInitWorkspaceDryRun(t *testing.T) {
	t.Parallel()
	e, _, stderr := testEnv(t, "")

	if err := run(context.Background(), []string{"init-workspace", "--dry-run", "ws"}, e); err != nil {
		t.Fatalf("init-workspace: %v", err)
	}

	if _, err := os.Stat(filepath.Join(e.cwd, "ws")); !os.IsNotExist(err) {
		t.Errorf("ws should not exist, stat err = %v", err)
	}

	logs := stderr.String()
	for _, want := range []string{
		"info: [dry-run] Wrote " + filepath.Join(e.cwd, "ws", "Cargo.toml") + "\n",
		"info: [dry-run] Running `",
		"info: [dry-run] Wrote " + filepath.Join(e.cwd, "ws", "template", "src", "main.rs") + "\n",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}

// TestInitWorkspaceExistingTemplate verifies that cargo's failure stops the
// command after the workspace manifest is written.
func TestInitWorkspaceExistingTemplate(t *testing.T) {
	t.Parallel()
	e, _, _ := testEnv(t, "")
	e.cargo = failingCargo{&fakeCargo{root: e.cwd}}
	writeTestFile(t, e.cwd, "ws/template/keep.txt", "keep")

	err := run(context.Background(), []string{"init-workspace", "ws"}, e)
	if err == nil {
		t.Fatal("expected an error")
	}

	if _, err := os.Stat(filepath.Join(e.cwd, "ws", "Cargo.toml")); err != nil {
		t.Errorf("Cargo.toml should stay behind: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.cwd, "ws", "template", "src", "main.rs")); !os.IsNotExist(err) {
		t.Errorf("main.rs should not be written, stat err = %v", err)
	}
}

func TestInitWorkspaceArgs(t *testing.T) {
	t.Parallel()
	e, _, _ := testEnv(t, "")

	if err := run(context.Background(), []string{"init-workspace", "a", "b"}, e); err == nil {
		t.Error("expected an error for two paths")
	}
}

type failingCargo struct{ *fakeCargo }

func (failingCargo) NewPackage(context.Context, string) error {
	return os.ErrExist
}
