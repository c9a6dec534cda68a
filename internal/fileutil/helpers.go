// Package fileutil holds small filesystem helpers shared across packages.
package fileutil

import (
	"os"
	"path/filepath"
)

// EnsureParentDir creates parent directories for the given path if they do
// not exist.
func EnsureParentDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0755)
}

// ReplaceFileAtomically renames tempPath to targetPath. On systems where
// cross-device rename fails, it falls back to remove-then-rename.
func ReplaceFileAtomically(tempPath, targetPath string) error {
	if err := os.Rename(tempPath, targetPath); err == nil {
		return nil
	}

	if err := os.Remove(targetPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	return os.Rename(tempPath, targetPath)
}

// WriteFileAtomic writes data to targetPath through a temp file plus rename,
// so readers never observe a partial write.
func WriteFileAtomic(targetPath string, data []byte, perm os.FileMode) error {
	if err := EnsureParentDir(targetPath); err != nil {
		return err
	}

	tmpPath := targetPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	if err := ReplaceFileAtomically(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
