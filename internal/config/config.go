// Package config loads and stores cargo-scripts.toml, the per-workspace
// settings file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/qryxip/cargo-scripts/internal/fsutil"
)

const (
	// FileName is the settings file at the workspace root.
	FileName = "cargo-scripts.toml"
	// TokenEnv overrides the token file when set.
	TokenEnv = "CARGO_SCRIPTS_GITHUB_TOKEN"
	// DefaultBase is the template directory of a new workspace.
	DefaultBase = "./template"
)

// Config is the content of cargo-scripts.toml.
type Config struct {
	// Base is the template package directory, relative to the workspace.
	Base        string            `toml:"base"`
	GithubToken GithubToken       `toml:"github_token,inline"`
	GistIDs     map[string]string `toml:"gist_ids"`

	path string
}

// GithubToken says where the GitHub token is kept.
type GithubToken struct {
	Kind string `toml:"kind"`
	Path string `toml:"path"`
}

// New returns the default settings for the workspace at root. The token file
// lives in the user's data directory, written with a leading ~ when it is
// under home.
func New(root, home string, getenv func(string) string) (*Config, error) {
	dir, err := DataLocalDir(home, getenv)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "cargo-scripts", "github-token")
	if home != "" && strings.HasPrefix(path, home+string(filepath.Separator)) {
		path = "~" + strings.TrimPrefix(path, home)
	}

	return &Config{
		Base:        DefaultBase,
		GithubToken: GithubToken{Kind: "file", Path: path},
		GistIDs:     map[string]string{},
		path:        filepath.Join(root, FileName),
	}, nil
}

// Load reads <root>/cargo-scripts.toml.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var c Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse the TOML file at %s: %w", path, err)
	}
	if c.GithubToken.Kind != "file" {
		return nil, fmt.Errorf("%s: unsupported `github_token.kind` %q", path, c.GithubToken.Kind)
	}
	if c.GistIDs == nil {
		c.GistIDs = map[string]string{}
	}
	c.path = path
	return &c, nil
}

// Path returns the file the settings are stored in.
func (c *Config) Path() string {
	return c.path
}

// Store writes the settings back.
func (c *Config) Store(fs *fsutil.FS) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return fs.Write(c.path, data)
}

// BasePath returns the template directory as an absolute path.
func (c *Config) BasePath(root string) string {
	if filepath.IsAbs(c.Base) {
		return c.Base
	}
	return filepath.Join(root, filepath.FromSlash(c.Base))
}

// LoadOrAsk returns the token stored in the token file. When the file does not
// exist, ask is called with a prompt and the answer is saved.
func (t GithubToken) LoadOrAsk(fs *fsutil.FS, home string, ask func(prompt string) (string, error)) (string, error) {
	path := ExpandTilde(t.Path, home)

	data, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	token, err := ask("GitHub token: ")
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if err := fs.MkdirAll(filepath.Dir(path)); err != nil {
		return "", err
	}
	if err := fs.Write(path, []byte(token)); err != nil {
		return "", err
	}
	return token, nil
}

// ExpandTilde replaces a leading ~ with home.
func ExpandTilde(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

// DataLocalDir returns the per-user local data directory.
func DataLocalDir(home string, getenv func(string) string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("local data directory not found: %%LOCALAPPDATA%% is not set")
	case "darwin":
		if home == "" {
			return "", fmt.Errorf("local data directory not found")
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	if dir := getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir, nil
	}
	if home == "" {
		return "", fmt.Errorf("local data directory not found")
	}
	return filepath.Join(home, ".local", "share"), nil
}
