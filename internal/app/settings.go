package app

import (
	"context"
	"fmt"

	"github.com/qryxip/cargo-scripts/internal/config"
)

// ConfigSetBase sets the template package directory.
func (a *App) ConfigSetBase(ctx context.Context, manifestPath, path string) error {
	cfg, err := a.config(ctx, manifestPath)
	if err != nil {
		return err
	}
	a.Log.Infof("`base`: %q → %q", cfg.Base, path)
	cfg.Base = path
	return cfg.Store(a.fs())
}

// ConfigSetGistID records the gist of a package.
func (a *App) ConfigSetGistID(ctx context.Context, manifestPath, pkg, id string) error {
	cfg, err := a.config(ctx, manifestPath)
	if err != nil {
		return err
	}
	a.Log.Infof("`gist_ids.%q`: %s → %q", pkg, quoteOpt(cfg.GistIDs, pkg), id)
	cfg.GistIDs[pkg] = id
	return cfg.Store(a.fs())
}

// ConfigRemoveGistID forgets the gist of a package.
func (a *App) ConfigRemoveGistID(ctx context.Context, manifestPath, pkg string) error {
	cfg, err := a.config(ctx, manifestPath)
	if err != nil {
		return err
	}
	if _, ok := cfg.GistIDs[pkg]; !ok {
		return fmt.Errorf("`gist_ids.%q` is not set", pkg)
	}
	delete(cfg.GistIDs, pkg)
	a.Log.Infof("Removed `gist_ids.%q`", pkg)
	return cfg.Store(a.fs())
}

func (a *App) config(ctx context.Context, manifestPath string) (*config.Config, error) {
	md, err := a.metadata(ctx, manifestPath)
	if err != nil {
		return nil, err
	}
	return config.Load(md.WorkspaceRoot)
}
