// cargo-scripts converts between single-file Rust scripts with an embedded
// manifest and packages of a Cargo workspace.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/qryxip/cargo-scripts/internal/app"
	"github.com/qryxip/cargo-scripts/internal/cargo"
	"github.com/qryxip/cargo-scripts/internal/gist"
	"github.com/qryxip/cargo-scripts/internal/logging"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	e, err := osEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	root := newRootCmd(e)
	root.SetArgs(cargoArgs(os.Args[1:]))
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			fmt.Fprintf(w, "error: %v\n", err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

// run executes one command line. It is main without the process around it.
func run(ctx context.Context, args []string, e *env) error {
	root := newRootCmd(e)
	root.SetArgs(cargoArgs(args))
	return root.ExecuteContext(ctx)
}

// cargoArgs drops the subcommand name cargo passes when the binary runs as
// `cargo scripts`.
func cargoArgs(args []string) []string {
	if len(args) > 0 && args[0] == "scripts" {
		return args[1:]
	}
	return args
}

// env is what commands take from the process.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cwd    string
	home   string
	getenv func(string) string

	// cargo is nil for the real cargo binary.
	cargo cargo.Runner
	// gistBaseURL is empty for api.github.com.
	gistBaseURL  string
	readPassword func(prompt string) (string, error)
}

func osEnv() (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get the working directory: %w", err)
	}
	home, _ := os.UserHomeDir()
	return &env{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		cwd:          cwd,
		home:         home,
		getenv:       os.Getenv,
		readPassword: readPassword,
	}, nil
}

// readPassword prompts on stderr and reads a line from the terminal without
// echo, or from standard input when it is not a terminal.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read the password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read the password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// common are the flags most commands share.
type common struct {
	color        string
	manifestPath string
	dryRun       bool
}

func (c *common) addManifestPath(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.manifestPath, "manifest-path", "", "path to the workspace `Cargo.toml`")
}

func (c *common) addDryRun(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&c.dryRun, "dry-run", false, "log what would be done without doing it")
}

// app builds the App for one command.
func (c *common) app(e *env) (*app.App, error) {
	color, err := logging.ParseColor(c.color)
	if err != nil {
		return nil, err
	}
	logger := logging.New(e.stderr, color)

	runner := e.cargo
	if runner == nil {
		runner = &cargo.Exec{Stderr: e.stderr, Log: logger}
	}

	return &app.App{
		Cwd:          e.cwd,
		HomeDir:      e.home,
		Stdin:        e.stdin,
		Stdout:       e.stdout,
		Log:          logger,
		Cargo:        runner,
		Gist:         gistClient(e.gistBaseURL, logger),
		ReadPassword: e.readPassword,
		Getenv:       e.getenv,
		Color:        string(color),
		DryRun:       c.dryRun,
	}, nil
}

func gistClient(baseURL string, logger *log.Logger) func(token string) gist.API {
	return func(token string) gist.API {
		opts := []gist.ClientOption{gist.WithToken(token), gist.WithLogger(logger)}
		if baseURL != "" {
			opts = append(opts, gist.WithBaseURL(baseURL))
		}
		return gist.NewClient(opts...)
	}
}

func newRootCmd(e *env) *cobra.Command {
	c := &common{}

	root := &cobra.Command{
		Use:   "cargo-scripts",
		Short: "Manage single-file Rust scripts in a Cargo workspace",
		Long: `cargo-scripts keeps single-file Rust scripts as packages of a Cargo workspace.

A script carries its manifest in a ` + "```cargo" + ` block of its leading //! doc
comment. import splits a script into Cargo.toml and src/main.rs; export
merges a package back into one script.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(e.stdin)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	root.PersistentFlags().StringVar(&c.color, "color", string(logging.Auto), "coloring: auto, always, never")

	root.AddCommand(
		newInitWorkspaceCmd(e, c),
		newNewCmd(e, c),
		newRmCmd(e, c),
		newIncludeCmd(e, c),
		newExcludeCmd(e, c),
		newImportCmd(e, c),
		newExportCmd(e, c),
		newMvCmd(e, c),
		newGistCmd(e, c),
		newConfigCmd(e, c),
	)
	return root
}
