// Package cargo runs the cargo subcommands the tool depends on and picks
// targets out of their metadata.
package cargo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"

	"github.com/qryxip/cargo-scripts/internal/manifest"
	"github.com/qryxip/cargo-scripts/internal/model"
)

var (
	// ErrNotVirtual is returned when the workspace root manifest is itself a
	// package.
	ErrNotVirtual = errors.New("the target package must be a virtual manifest")
	// ErrNoTarget is returned when a package has no runnable target.
	ErrNoTarget = errors.New("no `bin` targets found")
	// ErrAmbiguousTarget is returned when more than one target could be
	// meant.
	ErrAmbiguousTarget = errors.New("could not determine which `bin` target to export")
	// ErrNoSuchPackage is returned by FindPackage.
	ErrNoSuchPackage = errors.New("no such package")
)

// Runner runs cargo.
type Runner interface {
	// Metadata returns `cargo metadata --no-deps` output for the workspace
	// containing dir, or for manifestPath when it is not empty.
	Metadata(ctx context.Context, dir, manifestPath, color string) (*model.Metadata, error)
	// NewPackage runs `cargo new --vcs none path`.
	NewPackage(ctx context.Context, path string) error
}

// Exec runs the real cargo binary.
type Exec struct {
	// Program is the cargo executable; empty means $CARGO or "cargo".
	Program string
	Stderr  io.Writer
	Log     *log.Logger
}

// Program returns the cargo executable named by $CARGO, or "cargo".
func Program() string {
	if p := os.Getenv("CARGO"); p != "" {
		return p
	}
	return "cargo"
}

func (e *Exec) program() string {
	if e.Program != "" {
		return e.Program
	}
	return Program()
}

// Metadata implements Runner.
func (e *Exec) Metadata(ctx context.Context, dir, manifestPath, color string) (*model.Metadata, error) {
	args := []string{"metadata", "--no-deps", "--format-version", "1", "--color", color, "--frozen"}
	if manifestPath != "" {
		args = append(args, "--manifest-path", manifestPath)
	}

	e.Log.Infof("Running `%s`", CommandLine(e.program(), args))
	cmd := exec.CommandContext(ctx, e.program(), args...)
	cmd.Dir = dir
	cmd.Stderr = e.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("cargo metadata: %w", err)
	}

	md, err := ParseMetadata(out)
	if err != nil {
		return nil, fmt.Errorf("cargo metadata: %w", err)
	}
	return md, nil
}

// NewPackage implements Runner.
func (e *Exec) NewPackage(ctx context.Context, path string) error {
	args := NewArgs(path)
	e.Log.Infof("Running `%s`", CommandLine(e.program(), args))

	cmd := exec.CommandContext(ctx, e.program(), args...)
	cmd.Stdout = e.Stderr
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cargo new: %w", err)
	}
	return nil
}

// NewArgs returns the arguments of `cargo new` for a template package.
func NewArgs(path string) []string {
	return []string{"new", "--vcs", "none", path}
}

// CommandLine renders a command as a shell would need it typed.
func CommandLine(program string, args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{program}, args...) {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", w)
		}
		words = append(words, q)
	}
	return strings.Join(words, " ")
}

// CheckVirtual returns ErrNotVirtual when the metadata's workspace root is
// also a package.
func CheckVirtual(md *model.Metadata) error {
	if md.Resolve != nil && md.Resolve.Root != nil {
		return ErrNotVirtual
	}
	root := filepath.Join(md.WorkspaceRoot, "Cargo.toml")
	for _, p := range md.Packages {
		if filepath.Clean(p.ManifestPath) == root {
			return ErrNotVirtual
		}
	}
	return nil
}

// FindPackage returns the workspace member called name.
func FindPackage(md *model.Metadata, name string) (*model.Package, error) {
	for i := range md.Packages {
		if md.Packages[i].Name == name {
			return &md.Packages[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchPackage, name)
}

// DefaultBin picks the target a script is exported from: the package's `bin`
// targets, narrowed to package.default-run when it is set, must come down to
// exactly one. It returns that target's source path and the manifest text.
func DefaultBin(pkg *model.Package) (string, string, error) {
	data, err := os.ReadFile(pkg.ManifestPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", pkg.ManifestPath, err)
	}
	text := string(data)
	m, err := manifest.Decode(text)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", pkg.ManifestPath, err)
	}

	target, err := SelectBin(pkg.Targets, m.Package.DefaultRun)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", pkg.Name, err)
	}
	return target.SrcPath, text, nil
}

// SelectBin applies the default-bin rule to targets.
func SelectBin(targets []model.Target, defaultRun *string) (*model.Target, error) {
	var found []*model.Target
	for i := range targets {
		t := &targets[i]
		if t.IsBin() && (defaultRun == nil || *defaultRun == t.Name) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return nil, ErrNoTarget
	case 1:
		return found[0], nil
	}
	return nil, ErrAmbiguousTarget
}

// ParseMetadata decodes `cargo metadata --format-version 1` output.
func ParseMetadata(data []byte) (*model.Metadata, error) {
	var md model.Metadata
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&md); err != nil {
		return nil, err
	}
	return &md, nil
}
