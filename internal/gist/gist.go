// Package gist talks to the GitHub Gist API, where scripts are shared as
// single-file gists.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/qryxip/cargo-scripts/internal/lang"
)

const (
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"
	// UserAgent is sent with every request.
	UserAgent = "cargo-scripts <https://github.com/qryxip/cargo-scripts>"

	maxJSONResponseBytes = 10 << 20
)

var (
	// ErrStatus is returned when the API answers with an unexpected status.
	ErrStatus = errors.New("unexpected status")
	// ErrNoRustFile is returned for gists without a script file.
	ErrNoRustFile = errors.New("no Rust files found")
	// ErrMultipleRustFiles is returned when a gist holds several script
	// files.
	ErrMultipleRustFiles = errors.New("multiple Rust files")
	// ErrTruncated is returned when the API did not send a file in full.
	ErrTruncated = errors.New("file is truncated")
)

type (
	// Gist is the part of a gist the tool reads.
	Gist struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Files       map[string]File `json:"files"`
	}

	// File is one file of a gist.
	File struct {
		Filename  string `json:"filename"`
		Truncated bool   `json:"truncated"`
		Content   string `json:"content"`
	}

	// API is the set of gist operations commands use.
	API interface {
		Get(ctx context.Context, id string) (*Gist, error)
		Create(ctx context.Context, files map[string]string, description string, public bool) (string, error)
		Update(ctx context.Context, id string, files map[string]string, description string) error
		URL(id string) string
	}

	// Client is an API backed by HTTP.
	Client struct {
		httpClient *http.Client
		baseURL    string
		token      string
		log        *log.Logger
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the API root, for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) {
		g.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken authenticates requests.
func WithToken(token string) ClientOption {
	return func(g *Client) {
		g.token = token
	}
}

// WithLogger logs each request and its response status.
func WithLogger(l *log.Logger) ClientOption {
	return func(g *Client) {
		g.log = l
	}
}

// NewClient returns a Client for api.github.com.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		log:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the API URL of the gist id.
func (c *Client) URL(id string) string {
	return c.baseURL + "/gists/" + id
}

// Get fetches a gist.
func (c *Client) Get(ctx context.Context, id string) (*Gist, error) {
	var g Gist
	if err := c.do(ctx, http.MethodGet, c.URL(id), nil, http.StatusOK, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create makes a new gist and returns its id.
func (c *Client) Create(ctx context.Context, files map[string]string, description string, public bool) (string, error) {
	payload := map[string]any{
		"files":       filesPayload(files),
		"description": description,
		"public":      public,
	}
	var g Gist
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/gists", payload, http.StatusCreated, &g); err != nil {
		return "", err
	}
	if g.ID == "" {
		return "", errors.New("create gist: response has no id")
	}
	return g.ID, nil
}

// Update replaces the given files of gist id.
func (c *Client) Update(ctx context.Context, id string, files map[string]string, description string) error {
	payload := map[string]any{
		"files":       filesPayload(files),
		"description": description,
	}
	var g Gist
	return c.do(ctx, http.MethodPatch, c.URL(id), payload, http.StatusOK, &g)
}

func filesPayload(files map[string]string) map[string]any {
	out := make(map[string]any, len(files))
	for name, content := range files {
		out[name] = map[string]string{"content": content}
	}
	return out
}

func (c *Client) do(ctx context.Context, method, url string, payload any, want int, out any) error {
	body := io.Reader(http.NoBody)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	c.log.Infof("%s %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.log.Info(resp.Status)

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: %w %d (expected %d)", method, url, ErrStatus, resp.StatusCode, want)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, url, err)
	}
	return nil
}

// FileName is the gist file a package's script is stored as.
func FileName(pkg string) string {
	return pkg + ".rs"
}

// RustFile returns the gist's only script file.
func (g *Gist) RustFile() (*File, error) {
	var found []File
	for key, f := range g.Files {
		name := f.Filename
		if name == "" {
			name = key
			f.Filename = key
		}
		if lang.ForExtension(filepath.Ext(name)) == "rust" {
			found = append(found, f)
		}
	}

	switch len(found) {
	case 0:
		return nil, ErrNoRustFile
	case 1:
	default:
		names := make([]string, len(found))
		for i, f := range found {
			names[i] = f.Filename
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: [%s]", ErrMultipleRustFiles, strings.Join(names, ", "))
	}

	f := found[0]
	if f.Truncated {
		return nil, fmt.Errorf("%s: %w", f.Filename, ErrTruncated)
	}
	return &f, nil
}
