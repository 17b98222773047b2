// Package fsutil performs the file-system side effects of commands, honoring
// dry-run mode and logging each step.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FS writes through to disk unless DryRun is set. Every mutation is logged,
// prefixed with "[dry-run] " in dry-run mode.
type FS struct {
	DryRun bool
	Log    *log.Logger
}

func (fs *FS) prefix() string {
	if fs.DryRun {
		return "[dry-run] "
	}
	return ""
}

// Write replaces path with data atomically.
func (fs *FS) Write(path string, data []byte) error {
	if !fs.DryRun {
		if err := WriteAtomic(path, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	fs.Log.Infof("%sWrote %s", fs.prefix(), path)
	return nil
}

// Copy copies the regular file src to dst.
func (fs *FS) Copy(src, dst string) error {
	if !fs.DryRun {
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
		}
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
		}
		if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
		}
	}
	fs.Log.Infof("%sCopied %s to %s", fs.prefix(), src, dst)
	return nil
}

// MkdirAll creates path and its parents.
func (fs *FS) MkdirAll(path string) error {
	if fs.DryRun {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// RemoveAll deletes path recursively.
func (fs *FS) RemoveAll(path string) error {
	if !fs.DryRun {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	fs.Log.Infof("%sRemoved %s", fs.prefix(), path)
	return nil
}

// Rename moves a file or directory.
func (fs *FS) Rename(from, to string) error {
	if !fs.DryRun {
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to move %s to %s: %w", from, to, err)
		}
	}
	fs.Log.Infof("%sMoved %s to %s", fs.prefix(), from, to)
	return nil
}

// WriteAtomic writes data to a temporary file next to path and renames it
// over path. An existing file keeps its permissions.
func WriteAtomic(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
