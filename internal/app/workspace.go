package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qryxip/cargo-scripts/internal/cargo"
	"github.com/qryxip/cargo-scripts/internal/config"
	"github.com/qryxip/cargo-scripts/internal/discover"
	"github.com/qryxip/cargo-scripts/internal/manifest"
	"github.com/qryxip/cargo-scripts/internal/script"
	"github.com/qryxip/cargo-scripts/internal/tomledit"
	"github.com/qryxip/cargo-scripts/internal/workspace"
)

const workspaceManifest = `[workspace]
members = ["template"]
exclude = []
`

// InitWorkspace creates a workspace at path with a template package.
func (a *App) InitWorkspace(ctx context.Context, path string) error {
	if path == "" {
		path = "."
	}
	root := a.abs(path)
	fs := a.fs()

	if err := fs.MkdirAll(root); err != nil {
		return err
	}
	if err := fs.Write(filepath.Join(root, workspace.ManifestName), []byte(workspaceManifest)); err != nil {
		return err
	}
	cfg, err := config.New(root, a.HomeDir, a.getenv)
	if err != nil {
		return err
	}
	if err := cfg.Store(fs); err != nil {
		return err
	}

	template := filepath.Join(root, "template")
	if a.DryRun {
		a.Log.Infof("[dry-run] Running `%s`", cargo.CommandLine(cargo.Program(), cargo.NewArgs(template)))
	} else {
		if err := a.Cargo.NewPackage(ctx, template); err != nil {
			return err
		}
		manifestPath := filepath.Join(template, workspace.ManifestName)
		doc, err := readManifest(manifestPath)
		if err != nil {
			return err
		}
		if doc, err = manifest.NormalizeTemplate(doc, a.Log); err != nil {
			return fmt.Errorf("%s: %w", manifestPath, err)
		}
		if err := fs.Write(manifestPath, doc.Bytes()); err != nil {
			return err
		}
	}

	if err := fs.MkdirAll(filepath.Join(template, "src")); err != nil {
		return err
	}
	return fs.Write(filepath.Join(template, "src", "main.rs"), []byte(script.TemplateSource))
}

// NewOptions are the arguments of New.
type NewOptions struct {
	ManifestPath string
	// Name is the package name; empty means the directory name.
	Name string
	Path string
}

// New creates a package at opts.Path from the template base and adds it to
// workspace.members.
func (a *App) New(ctx context.Context, opts NewOptions) error {
	md, err := a.metadata(ctx, opts.ManifestPath)
	if err != nil {
		return err
	}
	root := md.WorkspaceRoot
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	base := cfg.BasePath(root)
	dst := a.abs(opts.Path)
	fs := a.fs()

	files, err := discover.Files(base, workspace.ManifestName)
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", base, err)
	}
	for _, rel := range files {
		to := filepath.Join(dst, rel)
		if err := fs.MkdirAll(filepath.Dir(to)); err != nil {
			return err
		}
		if err := fs.Copy(filepath.Join(base, rel), to); err != nil {
			return err
		}
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(dst)
	}
	baseManifest := filepath.Join(base, workspace.ManifestName)
	doc, err := readManifest(baseManifest)
	if err != nil {
		return err
	}
	if doc, err = manifest.SetPackageName(doc, name, a.Log); err != nil {
		return fmt.Errorf("%s: %w", baseManifest, err)
	}
	if err := fs.MkdirAll(dst); err != nil {
		return err
	}
	if err := fs.Write(filepath.Join(dst, workspace.ManifestName), doc.Bytes()); err != nil {
		return err
	}

	return workspace.Modify(fs, root, workspace.Edit{AddMembers: dst})
}

// Rm removes a package from both lists and deletes its directory.
func (a *App) Rm(ctx context.Context, manifestPath, pkg string) error {
	md, p, err := a.pkg(ctx, manifestPath, pkg)
	if err != nil {
		return err
	}
	dir := packageDir(p)
	fs := a.fs()
	if err := workspace.Modify(fs, md.WorkspaceRoot, workspace.Edit{RmMembers: dir, RmExclude: dir}); err != nil {
		return err
	}
	return fs.RemoveAll(dir)
}

// Include moves path from workspace.exclude to workspace.members.
func (a *App) Include(ctx context.Context, manifestPath, path string) error {
	md, err := a.metadata(ctx, manifestPath)
	if err != nil {
		return err
	}
	path = a.abs(path)
	return workspace.Modify(a.fs(), md.WorkspaceRoot, workspace.Edit{AddMembers: path, RmExclude: path})
}

// Exclude moves path from workspace.members to workspace.exclude.
func (a *App) Exclude(ctx context.Context, manifestPath, path string) error {
	md, err := a.metadata(ctx, manifestPath)
	if err != nil {
		return err
	}
	path = a.abs(path)
	return workspace.Modify(a.fs(), md.WorkspaceRoot, workspace.Edit{AddExclude: path, RmMembers: path})
}

// RenameOptions are the arguments of Rename.
type RenameOptions struct {
	ManifestPath string
	Package      string
	// To is the new package directory.
	To string
	// Name is the new package name; empty means the base name of To.
	Name string
}

// Rename moves a package to a new directory and renames it. The recorded gist
// id follows the package.
func (a *App) Rename(ctx context.Context, opts RenameOptions) error {
	md, p, err := a.pkg(ctx, opts.ManifestPath, opts.Package)
	if err != nil {
		return err
	}
	root := md.WorkspaceRoot
	from := packageDir(p)
	to := a.abs(opts.To)
	name := opts.Name
	if name == "" {
		name = filepath.Base(to)
	}
	fs := a.fs()

	if !workspace.Same(root, from, to) {
		if _, err := os.Stat(to); err == nil {
			return fmt.Errorf("%s already exists", to)
		}
		if err := fs.MkdirAll(filepath.Dir(to)); err != nil {
			return err
		}
		if err := fs.Rename(from, to); err != nil {
			return err
		}
		if err := workspace.Modify(fs, root, workspace.Edit{AddMembers: to, RmMembers: from}); err != nil {
			return err
		}
	}

	// The manifest is read from where it is now, which in dry-run mode is
	// still the old directory.
	current := from
	if !a.DryRun {
		current = to
	}
	doc, err := readManifest(filepath.Join(current, workspace.ManifestName))
	if err != nil {
		return err
	}
	if doc, err = manifest.SetPackageName(doc, name, a.Log); err != nil {
		return fmt.Errorf("%s: %w", filepath.Join(current, workspace.ManifestName), err)
	}
	if err := fs.Write(filepath.Join(to, workspace.ManifestName), doc.Bytes()); err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	id, ok := cfg.GistIDs[p.Name]
	if !ok || name == p.Name {
		return nil
	}
	delete(cfg.GistIDs, p.Name)
	a.Log.Infof("Removed `gist_ids.%q`", p.Name)
	a.Log.Infof("`gist_ids.%q`: %s → %q", name, quoteOpt(cfg.GistIDs, name), id)
	cfg.GistIDs[name] = id
	return cfg.Store(fs)
}

func readManifest(path string) (*tomledit.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := tomledit.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the TOML file at %s: %w", path, err)
	}
	return doc, nil
}
