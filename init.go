package main

import (
	"github.com/spf13/cobra"
)

// newInitWorkspaceCmd implements `cargo-scripts init-workspace`, which creates
// a virtual workspace with a template package and a cargo-scripts.toml.
func newInitWorkspaceCmd(e *env, c *common) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-workspace [PATH]",
		Short: "Create a workspace for scripts",
		Long: `Create a workspace for scripts at PATH (default: the current directory).

The workspace gets a virtual Cargo.toml with one member, "template", created
with ` + "`cargo new --vcs none`" + ` and set to version 0.0.0 with publish = false.
Its src/main.rs is replaced with a script skeleton. cargo-scripts.toml is
written next to Cargo.toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(e)
			if err != nil {
				return err
			}
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return a.InitWorkspace(cmd.Context(), path)
		},
	}
	c.addDryRun(cmd)
	return cmd
}
