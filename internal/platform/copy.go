package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// CopyPath copies src to dst. Directories are copied recursively and merged
// into an existing dst; regular files overwrite dst; symlinks are recreated
// pointing at the same target.
func CopyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.IsDir():
		return copyDir(src, dst)
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode())
	default:
		return fmt.Errorf("%s is not a regular file or directory", src)
	}
}

// RemovePath deletes the file or directory at path. Unlike os.RemoveAll it
// reports a missing path as an error, so callers can tell that the artifact
// they expected was not there.
func RemovePath(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// copyDir recursively copies src to dst.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			err = copyDir(srcPath, dstPath)
		case info.Mode()&os.ModeSymlink != 0:
			err = copySymlink(srcPath, dstPath)
		case info.Mode().IsRegular():
			err = copyFile(srcPath, dstPath, info.Mode())
		}
		// Sockets, devices and pipes are skipped.
		if err != nil {
			return err
		}
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode.Perm())
}

func copySymlink(src, dst string) error {
	target, err := ReadSymlinkTarget(src)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	return CreateSymlink(target, dst)
}
