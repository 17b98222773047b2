package main

import (
	"github.com/spf13/cobra"

	"github.com/qryxip/cargo-scripts/internal/app"
)

func newNewCmd(e *env, c *common) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "new PATH",
		Short: "Create a package from the template base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.New(cmd.Context(), app.NewOptions{
				ManifestPath: c.manifestPath,
				Name:         name,
				Path:         args[0],
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "package name (default: the directory name)")
	c.addManifestPath(cmd)
	c.addDryRun(cmd)
	return cmd
}

func newRmCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm PACKAGE",
		Short: "Remove a package and delete its directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.Rm(cmd.Context(), c.manifestPath, args[0])
		},
	}
	c.addManifestPath(cmd)
	c.addDryRun(cmd)
	return cmd
}

func newIncludeCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "include PATH",
		Short: "Move a path from `workspace.exclude` to `workspace.members`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.Include(cmd.Context(), c.manifestPath, args[0])
		},
	}
	c.addManifestPath(cmd)
	c.addDryRun(cmd)
	return cmd
}

func newExcludeCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude PATH",
		Short: "Move a path from `workspace.members` to `workspace.exclude`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.Exclude(cmd.Context(), c.manifestPath, args[0])
		},
	}
	c.addManifestPath(cmd)
	c.addDryRun(cmd)
	return cmd
}

func newImportCmd(e *env, c *common) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Split a script into a package",
		Long: `Split a script into a package of the workspace.

The script is read from FILE, or from standard input. Its manifest becomes
Cargo.toml and the rest becomes src/main.rs, with the manifest block left
holding a placeholder. The package is added to ` + "`workspace.members`" + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			opts := app.ImportOptions{ManifestPath: c.manifestPath, Path: path}
			if len(args) > 0 {
				opts.File = args[0]
			}
			return a.Import(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "package directory (default: <workspace>/<package name>)")
	c.addManifestPath(cmd)
	c.addDryRun(cmd)
	return cmd
}

func newExportCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export PACKAGE",
		Short: "Merge a package into a script and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.Export(cmd.Context(), c.manifestPath, args[0])
		},
	}
	c.addManifestPath(cmd)
	return cmd
}

func newMvCmd(e *env, c *common) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "mv PACKAGE PATH",
		Short: "Move and rename a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.Rename(cmd.Context(), app.RenameOptions{
				ManifestPath: c.manifestPath,
				Package:      args[0],
				To:           args[1],
				Name:         name,
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new package name (default: the directory name)")
	c.addManifestPath(cmd)
	c.addDryRun(cmd)
	return cmd
}

func newGistCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gist",
		Short: "Share scripts as GitHub gists",
	}

	var path string
	clone := &cobra.Command{
		Use:   "clone GIST_ID",
		Short: "Import the script of a gist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.GistClone(cmd.Context(), c.manifestPath, path, args[0])
		},
	}
	clone.Flags().StringVar(&path, "path", "", "package directory (default: <workspace>/<package name>)")
	c.addManifestPath(clone)
	c.addDryRun(clone)

	pull := &cobra.Command{
		Use:   "pull PACKAGE",
		Short: "Overwrite a package with its gist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.GistPull(cmd.Context(), c.manifestPath, args[0])
		},
	}
	c.addManifestPath(pull)
	c.addDryRun(pull)

	var (
		setUpstream bool
		private     bool
		description string
	)
	push := &cobra.Command{
		Use:   "push PACKAGE",
		Short: "Upload a package to its gist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			opts := app.PushOptions{
				ManifestPath: c.manifestPath,
				Package:      args[0],
				SetUpstream:  setUpstream,
				Private:      private,
			}
			if cmd.Flags().Changed("description") {
				opts.Description = &description
			}
			return a.GistPush(cmd.Context(), opts)
		},
	}
	push.Flags().BoolVarP(&setUpstream, "set-upstream", "u", false, "create a gist if none is recorded")
	push.Flags().BoolVar(&private, "private", false, "create a secret gist")
	push.Flags().StringVar(&description, "description", "", "gist description")
	c.addManifestPath(push)
	c.addDryRun(push)

	cmd.AddCommand(clone, pull, push)
	return cmd
}

func newConfigCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Edit cargo-scripts.toml",
	}
	set := &cobra.Command{
		Use:   "set",
		Short: "Set a setting",
	}
	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a setting",
	}

	base := &cobra.Command{
		Use:   "base PATH",
		Short: "Set the template package directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.ConfigSetBase(cmd.Context(), c.manifestPath, args[0])
		},
	}
	setGistID := &cobra.Command{
		Use:   "gist-id PACKAGE GIST_ID",
		Short: "Record the gist of a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.ConfigSetGistID(cmd.Context(), c.manifestPath, args[0], args[1])
		},
	}
	removeGistID := &cobra.Command{
		Use:   "gist-id PACKAGE",
		Short: "Forget the gist of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			return a.ConfigRemoveGistID(cmd.Context(), c.manifestPath, args[0])
		},
	}
	for _, sub := range []*cobra.Command{base, setGistID, removeGistID} {
		c.addManifestPath(sub)
		c.addDryRun(sub)
	}

	set.AddCommand(base, setGistID)
	remove.AddCommand(removeGistID)
	cmd.AddCommand(set, remove)
	return cmd
}
