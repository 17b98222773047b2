// Package manifest reads and edits the few package manifest fields the tool
// cares about.
package manifest

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/qryxip/cargo-scripts/internal/tomledit"
)

// ErrMissingPackageName is returned for manifests without package.name.
var ErrMissingPackageName = errors.New("missing `package.name`")

// Manifest is the decoded subset of a package's Cargo.toml.
type Manifest struct {
	Package struct {
		Name       *string `toml:"name"`
		DefaultRun *string `toml:"default-run"`
	} `toml:"package"`
}

// Decode parses text as a package manifest.
func Decode(text string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(text, &m); err != nil {
		return nil, fmt.Errorf("failed to parse the manifest: %w", err)
	}
	return &m, nil
}

// PackageName returns package.name from text.
func PackageName(text string) (string, error) {
	m, err := Decode(text)
	if err != nil {
		return "", err
	}
	if m.Package.Name == nil {
		return "", ErrMissingPackageName
	}
	return *m.Package.Name, nil
}

// SetPackageName rewrites package.name in place and logs the change.
func SetPackageName(doc *tomledit.Document, name string, logger *log.Logger) (*tomledit.Document, error) {
	kv := doc.Lookup("package", "name")
	if kv == nil {
		return nil, ErrMissingPackageName
	}
	old, ok := tomledit.StringValue(doc.Raw(kv.Value))
	if !ok {
		return nil, errors.New("`package.name` must be a string")
	}

	doc, err := doc.SetString([]string{"package", "name"}, name)
	if err != nil {
		return nil, err
	}
	logger.Infof("`package.name`: %q → %q", old, name)
	return doc, nil
}

// NormalizeTemplate sets package.version to "0.0.0" and package.publish to
// false, logging the previous values.
func NormalizeTemplate(doc *tomledit.Document, logger *log.Logger) (*tomledit.Document, error) {
	for _, f := range []struct {
		key string
		raw string
	}{
		{"version", tomledit.Quote("0.0.0")},
		{"publish", "false"},
	} {
		path := []string{"package", f.key}
		old := "none"
		if kv := doc.Lookup(path...); kv != nil {
			old = doc.Raw(kv.Value)
		}

		var err error
		if doc, err = doc.Set(path, f.raw); err != nil {
			return nil, fmt.Errorf("`package.%s`: %w", f.key, err)
		}
		logger.Infof("`package.%s`: %s → %s", f.key, old, f.raw)
	}
	return doc, nil
}
