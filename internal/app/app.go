// Package app implements the cargo-scripts commands on top of the script
// transcoder, the workspace editor and the cargo and gist collaborators.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/qryxip/cargo-scripts/internal/cargo"
	"github.com/qryxip/cargo-scripts/internal/config"
	"github.com/qryxip/cargo-scripts/internal/fsutil"
	"github.com/qryxip/cargo-scripts/internal/gist"
	"github.com/qryxip/cargo-scripts/internal/manifest"
	"github.com/qryxip/cargo-scripts/internal/model"
	"github.com/qryxip/cargo-scripts/internal/script"
	"github.com/qryxip/cargo-scripts/internal/workspace"
)

// App holds what a command needs from its environment. Each command is one
// pass with no state carried between invocations.
type App struct {
	Cwd     string
	HomeDir string
	Stdin   io.Reader
	Stdout  io.Writer
	Log     *log.Logger

	Cargo cargo.Runner
	// Gist returns an API client authenticated with token, which may be
	// empty for read-only use.
	Gist func(token string) gist.API
	// ReadPassword prompts for a secret.
	ReadPassword func(prompt string) (string, error)
	Getenv       func(string) string

	// Color is passed to cargo's --color.
	Color  string
	DryRun bool
}

func (a *App) fs() *fsutil.FS {
	return &fsutil.FS{DryRun: a.DryRun, Log: a.Log}
}

func (a *App) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(a.Cwd, path)
}

func (a *App) getenv(key string) string {
	if a.Getenv == nil {
		return os.Getenv(key)
	}
	return a.Getenv(key)
}

// metadata runs `cargo metadata` for the workspace and requires a virtual
// root manifest.
func (a *App) metadata(ctx context.Context, manifestPath string) (*model.Metadata, error) {
	if manifestPath != "" {
		manifestPath = a.abs(manifestPath)
	}
	md, err := a.Cargo.Metadata(ctx, a.Cwd, manifestPath, a.Color)
	if err != nil {
		return nil, err
	}
	if err := cargo.CheckVirtual(md); err != nil {
		return nil, err
	}
	return md, nil
}

func (a *App) pkg(ctx context.Context, manifestPath, name string) (*model.Metadata, *model.Package, error) {
	md, err := a.metadata(ctx, manifestPath)
	if err != nil {
		return nil, nil, err
	}
	p, err := cargo.FindPackage(md, name)
	if err != nil {
		return nil, nil, err
	}
	return md, p, nil
}

func (a *App) token(fs *fsutil.FS, cfg *config.Config) (string, error) {
	if t := a.getenv(config.TokenEnv); t != "" {
		return t, nil
	}
	return cfg.GithubToken.LoadOrAsk(fs, a.HomeDir, a.ReadPassword)
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// importScript splits text into a package: the manifest becomes Cargo.toml,
// the script with an empty manifest block becomes src/main.rs, and the
// package is added to workspace.members. dir maps the package name to the
// package directory. Files written before a failing step are left in place.
func (a *App) importScript(root, origin, text string, dir func(name string) string) (string, error) {
	ex, err := script.Rust().Extract([]byte(text))
	if err != nil {
		return "", fmt.Errorf("%s: %w", origin, err)
	}
	name, err := manifest.PackageName(ex.Manifest)
	if err != nil {
		return "", fmt.Errorf("%s: %w", origin, err)
	}
	mainRs, err := ex.Inject("")
	if err != nil {
		return "", fmt.Errorf("%s: %w", origin, err)
	}

	path := dir(name)
	fs := a.fs()
	if err := fs.MkdirAll(filepath.Join(path, "src")); err != nil {
		return "", err
	}
	if err := fs.Write(filepath.Join(path, workspace.ManifestName), []byte(ex.Manifest)); err != nil {
		return "", err
	}
	if err := fs.Write(filepath.Join(path, "src", "main.rs"), mainRs); err != nil {
		return "", err
	}
	if err := workspace.Modify(fs, root, workspace.Edit{AddMembers: path}); err != nil {
		return "", err
	}
	return name, nil
}

// exportScript embeds the manifest of the package's default bin target into
// that target's source.
func exportScript(p *model.Package) (string, []byte, error) {
	src, manifestText, err := cargo.DefaultBin(p)
	if err != nil {
		return "", nil, err
	}
	code, err := os.ReadFile(src)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", src, err)
	}
	out, err := script.Rust().Inject(code, manifestText)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", src, err)
	}
	return src, out, nil
}

func quoteOpt(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%q", v)
	}
	return "none"
}

func packageDir(p *model.Package) string {
	return filepath.Dir(p.ManifestPath)
}
