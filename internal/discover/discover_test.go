package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFilesIncludesHidden(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"template\"\n")
	writeFile(t, dir, "src/main.rs", "fn main() {}\n")
	writeFile(t, dir, ".rustfmt.toml", "edition = \"2021\"\n")
	writeFile(t, dir, ".cargo/config.toml", "")

	got, err := Files(dir, "Cargo.toml")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []string{
		filepath.Join(".cargo", "config.toml"),
		".rustfmt.toml",
		filepath.Join("src", "main.rs"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestFilesSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "src/main.rs", "fn main() {}\n")
	writeFile(t, dir, "target/debug/template", "binary")
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/main\n")

	got, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join("src", "main.rs") {
		t.Errorf("Files = %v, want only src/main.rs", got)
	}
}

func TestFilesGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "*.log\n/out/\n")
	writeFile(t, dir, "src/main.rs", "fn main() {}\n")
	writeFile(t, dir, "build.log", "")
	writeFile(t, dir, "out/a.txt", "")

	got, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []string{".gitignore", filepath.Join("src", "main.rs")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestFilesSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.rs", "fn main() {}\n")

	err := os.Symlink(filepath.Join(dir, "real.rs"), filepath.Join(dir, "link.rs"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	got, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(got) != 1 || got[0] != "real.rs" {
		t.Errorf("Files = %v, want [real.rs]", got)
	}
}

func TestFilesMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := Files(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing root")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
