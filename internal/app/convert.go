package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// ImportOptions are the arguments of Import.
type ImportOptions struct {
	ManifestPath string
	// Path is the package directory; empty means <workspace>/<package name>.
	Path string
	// File is the script to read; empty means standard input.
	File string
}

// Import splits a script into a package of the workspace.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	md, err := a.metadata(ctx, opts.ManifestPath)
	if err != nil {
		return err
	}

	origin, text := "<stdin>", ""
	if opts.File != "" {
		origin = a.abs(opts.File)
		if text, err = readText(origin); err != nil {
			return err
		}
	} else {
		data, err := io.ReadAll(a.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		text = string(data)
	}

	root := md.WorkspaceRoot
	_, err = a.importScript(root, origin, text, func(name string) string {
		if opts.Path != "" {
			return a.abs(opts.Path)
		}
		return filepath.Join(root, name)
	})
	return err
}

// Export merges a package back into a single script and writes it to
// Stdout.
func (a *App) Export(ctx context.Context, manifestPath, pkg string) error {
	_, p, err := a.pkg(ctx, manifestPath, pkg)
	if err != nil {
		return err
	}
	_, out, err := exportScript(p)
	if err != nil {
		return err
	}
	if _, err := a.Stdout.Write(out); err != nil {
		return fmt.Errorf("failed to write the script: %w", err)
	}
	return nil
}
