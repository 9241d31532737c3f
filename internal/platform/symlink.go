package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// sidecarSuffix marks the file that records a symlink target on Windows when
// the link itself had to be replaced by a copy.
const sidecarSuffix = ".target"

// CreateSymlink creates a symbolic link at link pointing to target.
// On Windows, when native symlinks are unavailable (developer mode off), the
// target file is copied and the original target is recorded in a sidecar.
func CreateSymlink(target, link string) error {
	if runtime.GOOS != "windows" {
		return os.Symlink(target, link)
	}

	if err := os.Symlink(target, link); err == nil {
		return nil
	}

	if err := copyFileForSymlink(target, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}

	// The copy is usable without the sidecar; only ReadSymlinkTarget needs it.
	_ = os.WriteFile(link+sidecarSuffix, []byte(target), 0644)
	return nil
}

// ReadSymlinkTarget returns the target of a symlink, consulting the Windows
// sidecar when the link was materialized as a copy.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}

	if runtime.GOOS != "windows" {
		return "", err
	}

	data, readErr := os.ReadFile(path + sidecarSuffix)
	if readErr != nil {
		return "", fmt.Errorf("readlink failed and no %s sidecar found: %w", sidecarSuffix, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// copyFileForSymlink copies src to dst. A relative src is resolved against
// the directory containing dst, the way the OS resolves a relative link.
func copyFileForSymlink(src, dst string) error {
	resolvedSrc := src
	if !filepath.IsAbs(src) {
		resolvedSrc = filepath.Join(filepath.Dir(dst), src)
	}

	in, err := os.Open(resolvedSrc)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
