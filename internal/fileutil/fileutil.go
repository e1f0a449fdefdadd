// Package fileutil provides file and directory utility functions used by
// the export stages.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyName = errors.New("name cannot be empty")
	ErrNotADir   = errors.New("path exists but is not a directory")
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// PathExists returns true if anything exists at the path, whatever its
// type. Symlinks count even when dangling.
func PathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// StageSibling creates a fresh hidden staging directory next to target,
// named after target's base name plus the given unique suffix. Building
// into a sibling keeps the final rename on one filesystem.
func StageSibling(target, suffix string) (string, error) {
	base := filepath.Base(target)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", ErrEmptyName
	}

	staging := filepath.Join(filepath.Dir(target), "."+base+".tmp-"+suffix)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("creating staging dir: %w", err)
	}
	return staging, nil
}

// FinalizeDir moves a fully populated staging directory into place as
// target with a single rename. If replace is set and anything exists at
// target, the old path is removed first; otherwise an existing target is the
// caller's error to detect beforehand. On rename failure the staging
// directory is left for the caller to clean up.
func FinalizeDir(staging, target string, replace bool) error {
	if replace && PathExists(target) {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("removing previous %s: %w", target, err)
		}
	}
	if err := os.Rename(staging, target); err != nil {
		return fmt.Errorf("finalizing %s: %w", target, err)
	}
	return nil
}

// EnsureDir creates the directory (and parents) if missing, failing if
// the path exists as a non-directory.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotADir, path)
		}
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating dir: %w", err)
	}
	return nil
}
