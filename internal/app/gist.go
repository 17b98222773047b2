package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/qryxip/cargo-scripts/internal/cargo"
	"github.com/qryxip/cargo-scripts/internal/config"
	"github.com/qryxip/cargo-scripts/internal/gist"
	"github.com/qryxip/cargo-scripts/internal/script"
)

// GistClone imports the script of a gist and records the gist id for the new
// package.
func (a *App) GistClone(ctx context.Context, manifestPath, path, id string) error {
	md, err := a.metadata(ctx, manifestPath)
	if err != nil {
		return err
	}
	root := md.WorkspaceRoot
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	g, err := a.Gist("").Get(ctx, id)
	if err != nil {
		return err
	}
	f, err := g.RustFile()
	if err != nil {
		return fmt.Errorf("gist %s: %w", id, err)
	}

	name, err := a.importScript(root, f.Filename, f.Content, func(name string) string {
		if path != "" {
			return a.abs(path)
		}
		return filepath.Join(root, name)
	})
	if err != nil {
		return err
	}

	a.Log.Infof("`gist_ids.%q`: %s → %q", name, quoteOpt(cfg.GistIDs, name), id)
	cfg.GistIDs[name] = id
	return cfg.Store(a.fs())
}

// GistPull overwrites a package with the content of its gist, logging a line
// diff of each file that changes.
func (a *App) GistPull(ctx context.Context, manifestPath, pkg string) error {
	md, p, err := a.pkg(ctx, manifestPath, pkg)
	if err != nil {
		return err
	}
	cfg, err := config.Load(md.WorkspaceRoot)
	if err != nil {
		return err
	}
	id, ok := cfg.GistIDs[p.Name]
	if !ok {
		return fmt.Errorf("could not find the `gist_id` for %q", p.Name)
	}

	g, err := a.Gist("").Get(ctx, id)
	if err != nil {
		return err
	}
	f, err := g.RustFile()
	if err != nil {
		return fmt.Errorf("gist %s: %w", id, err)
	}
	ex, err := script.Rust().Extract([]byte(f.Content))
	if err != nil {
		return fmt.Errorf("%s: %w", f.Filename, err)
	}
	pulledCode, err := ex.Inject("")
	if err != nil {
		return fmt.Errorf("%s: %w", f.Filename, err)
	}

	srcPath, prevManifest, err := cargo.DefaultBin(p)
	if err != nil {
		return err
	}
	prevCode, err := readText(srcPath)
	if err != nil {
		return err
	}

	fs := a.fs()
	for _, c := range []struct{ path, orig, edit string }{
		{srcPath, prevCode, string(pulledCode)},
		{p.ManifestPath, prevManifest, ex.Manifest},
	} {
		if c.orig == c.edit {
			a.Log.Infof("No changes: %s", c.path)
			continue
		}
		a.Log.Infof("`%s`:", c.path)
		for _, line := range diffLines(c.orig, c.edit) {
			a.Log.Infof("│%s", line)
		}
		if err := fs.Write(c.path, []byte(c.edit)); err != nil {
			return err
		}
	}
	return nil
}

// PushOptions are the arguments of GistPush.
type PushOptions struct {
	ManifestPath string
	Package      string
	// SetUpstream allows creating a gist when none is recorded.
	SetUpstream bool
	Private     bool
	// Description replaces the gist description when set.
	Description *string
}

// GistPush uploads the merged script of a package to its gist, creating the
// gist when SetUpstream is set.
func (a *App) GistPush(ctx context.Context, opts PushOptions) error {
	md, p, err := a.pkg(ctx, opts.ManifestPath, opts.Package)
	if err != nil {
		return err
	}
	cfg, err := config.Load(md.WorkspaceRoot)
	if err != nil {
		return err
	}
	fs := a.fs()
	token, err := a.token(fs, cfg)
	if err != nil {
		return err
	}
	api := a.Gist(token)

	_, local, err := exportScript(p)
	if err != nil {
		return err
	}

	if id, ok := cfg.GistIDs[p.Name]; ok {
		g, err := api.Get(ctx, id)
		if err != nil {
			return err
		}
		f, err := g.RustFile()
		if err != nil {
			return fmt.Errorf("gist %s: %w", id, err)
		}
		if f.Content == string(local) {
			a.Log.Info("Up to date")
			return nil
		}

		description := g.Description
		if opts.Description != nil {
			description = *opts.Description
		}
		if a.DryRun {
			a.Log.Infof("[dry-run] PATCH %s", api.URL(id))
			return nil
		}
		if err := api.Update(ctx, id, map[string]string{f.Filename: string(local)}, description); err != nil {
			return err
		}
		a.Log.Infof("Updated `%s`", id)
		return nil
	}

	if !opts.SetUpstream {
		return errors.New("to create a new gist, enable `--set-upstream`")
	}
	if a.DryRun {
		a.Log.Infof("[dry-run] POST %s", strings.TrimSuffix(api.URL(""), "/"))
		return nil
	}
	description := ""
	if opts.Description != nil {
		description = *opts.Description
	}
	id, err := api.Create(ctx, map[string]string{gist.FileName(p.Name): string(local)}, description, !opts.Private)
	if err != nil {
		return err
	}
	a.Log.Infof("Created `%s`", id)
	a.Log.Infof("`gist_ids.%q`: %s → %q", p.Name, quoteOpt(cfg.GistIDs, p.Name), id)
	cfg.GistIDs[p.Name] = id
	return cfg.Store(fs)
}

// diffLines renders a line diff of a and b, each line prefixed with "-", " "
// or "+".
func diffLines(a, b string) []string {
	x := splitLines(a)
	y := splitLines(b)
	var out []string
	for _, op := range difflib.NewMatcher(x, y).GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, l := range x[op.I1:op.I2] {
				out = append(out, " "+l)
			}
		case 'd':
			for _, l := range x[op.I1:op.I2] {
				out = append(out, "-"+l)
			}
		case 'i':
			for _, l := range y[op.J1:op.J2] {
				out = append(out, "+"+l)
			}
		case 'r':
			for _, l := range x[op.I1:op.I2] {
				out = append(out, "-"+l)
			}
			for _, l := range y[op.J1:op.J2] {
				out = append(out, "+"+l)
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
