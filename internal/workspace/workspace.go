// Package workspace edits the member lists of a workspace manifest without
// disturbing the rest of the file.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/qryxip/cargo-scripts/internal/fsutil"
	"github.com/qryxip/cargo-scripts/internal/tomledit"
)

// ManifestName is the file name of the workspace manifest.
const ManifestName = "Cargo.toml"

// The two lists a package can be listed in.
const (
	Members = "members"
	Exclude = "exclude"
)

var (
	// ErrNotAnArray is returned when workspace.members or workspace.exclude
	// holds something other than an array.
	ErrNotAnArray = errors.New("must be an array")
	// ErrNonUTF8Path is returned for paths that cannot be stored as a TOML
	// string.
	ErrNonUTF8Path = errors.New("path is not valid UTF-8")
)

// Rel renders path relative to root with forward slashes. Paths outside root
// are kept as given.
func Rel(root, path string) (string, error) {
	if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		path = rel
	}
	if !utf8.ValidString(path) {
		return "", fmt.Errorf("%w: %q", ErrNonUTF8Path, path)
	}
	return filepath.ToSlash(path), nil
}

// Same reports whether two list entries name the same directory under root.
// The comparison is purely lexical.
func Same(root, a, b string) bool {
	return resolve(root, a) == resolve(root, b)
}

func resolve(root, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// Index returns the position of the first entry of workspace.<list> that is
// the same as path, or -1.
func Index(doc *tomledit.Document, list, root, path string) (int, error) {
	kv := doc.Lookup("workspace", list)
	if kv == nil {
		return -1, nil
	}
	if kv.Array == nil {
		return -1, fmt.Errorf("`workspace.%s` %w", list, ErrNotAnArray)
	}
	for i, e := range kv.Array.Elems {
		s, ok := tomledit.StringValue(doc.Raw(e.Span))
		if ok && Same(root, s, path) {
			return i, nil
		}
	}
	return -1, nil
}

// EditList adds and/or removes one path in workspace.<list>. add is appended
// unless an entry is already the same; remove deletes the first entry that is
// the same. Empty paths are skipped. A missing list is created empty.
func EditList(doc *tomledit.Document, list, add, remove, root string) (*tomledit.Document, error) {
	path := []string{"workspace", list}

	kv := doc.Lookup(path...)
	if kv == nil {
		d, err := doc.Set(path, "[]")
		if err != nil {
			return nil, fmt.Errorf("`workspace.%s`: %w", list, err)
		}
		doc = d
	} else if kv.Array == nil {
		return nil, fmt.Errorf("`workspace.%s` %w", list, ErrNotAnArray)
	}

	if add != "" {
		rel, err := Rel(root, add)
		if err != nil {
			return nil, err
		}
		i, err := Index(doc, list, root, rel)
		if err != nil {
			return nil, err
		}
		if i < 0 {
			if doc, err = doc.Append(path, tomledit.Quote(rel)); err != nil {
				return nil, err
			}
		}
	}

	if remove != "" {
		rel, err := Rel(root, remove)
		if err != nil {
			return nil, err
		}
		i, err := Index(doc, list, root, rel)
		if err != nil {
			return nil, err
		}
		if i >= 0 {
			if doc, err = doc.Remove(path, i); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// Edit names the paths to move in and out of the two lists. Empty fields are
// ignored.
type Edit struct {
	AddMembers string
	AddExclude string
	RmMembers  string
	RmExclude  string
}

// Modify applies e to <root>/Cargo.toml. Every change is logged; in dry-run
// mode the file is left alone.
func Modify(fs *fsutil.FS, root string, e Edit) error {
	manifestPath := filepath.Join(root, ManifestName)
	src, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", manifestPath, err)
	}
	doc, err := tomledit.Parse(src)
	if err != nil {
		return fmt.Errorf("failed to parse the TOML file at %s: %w", manifestPath, err)
	}

	for _, l := range []struct{ name, add, rm string }{
		{Members, e.AddMembers, e.RmMembers},
		{Exclude, e.AddExclude, e.RmExclude},
	} {
		added, err := present(doc, l.name, root, l.add)
		if err != nil {
			return fmt.Errorf("%s: %w", manifestPath, err)
		}
		removed, err := present(doc, l.name, root, l.rm)
		if err != nil {
			return fmt.Errorf("%s: %w", manifestPath, err)
		}
		if doc, err = EditList(doc, l.name, l.add, l.rm, root); err != nil {
			return fmt.Errorf("%s: %w", manifestPath, err)
		}

		if l.add != "" {
			rel, _ := Rel(root, l.add)
			if added {
				fs.Log.Infof("%q is already in `workspace.%s`", rel, l.name)
			} else {
				fs.Log.Infof("Added %q to `workspace.%s`", rel, l.name)
			}
		}
		if l.rm != "" {
			rel, _ := Rel(root, l.rm)
			if removed {
				fs.Log.Infof("Removed %q from `workspace.%s`", rel, l.name)
			} else {
				fs.Log.Infof("%q is not in `workspace.%s`", rel, l.name)
			}
		}
	}

	return fs.Write(manifestPath, doc.Bytes())
}

// present reports whether workspace.<list> has an entry that is the same as
// path. An empty path is never present.
func present(doc *tomledit.Document, list, root, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	rel, err := Rel(root, path)
	if err != nil {
		return false, err
	}
	i, err := Index(doc, list, root, rel)
	return i >= 0, err
}

// List returns the string entries of workspace.<list>.
func List(doc *tomledit.Document, list string) ([]string, error) {
	kv := doc.Lookup("workspace", list)
	if kv == nil {
		return nil, nil
	}
	if kv.Array == nil {
		return nil, fmt.Errorf("`workspace.%s` %w", list, ErrNotAnArray)
	}
	var out []string
	for _, e := range kv.Array.Elems {
		if s, ok := tomledit.StringValue(doc.Raw(e.Span)); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
