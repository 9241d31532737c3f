package home

import (
	"fmt"
	"io"
	"os"

	"github.com/gpm-labs/gpm/internal/platform"
)

// Init creates the home, repositories and scripts directories. It prints one
// progress line per directory to w; existing directories are skipped.
func (c Context) Init(w io.Writer) error {
	for _, dir := range []string{c.Home, c.Repositories, c.Scripts} {
		if err := ensureDir(w, dir); err != nil {
			return err
		}
	}
	return nil
}

// Missing returns the layout directories that do not exist yet.
func (c Context) Missing() []string {
	var missing []string
	for _, dir := range []string{c.Home, c.Repositories, c.Scripts} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	return missing
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, DirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll is subject to the umask.
	if err := platform.Chmod(path, DirPerm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
