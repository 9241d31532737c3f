package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/gpm-labs/gpm/internal/errdefs"
)

// filePerm is the permission of every registry file gpm writes.
const filePerm os.FileMode = 0644

// Load reads the registry file at path, validates it against the schema for
// kind and decodes it into v. A missing file is not an error: Load reports
// exists=false and leaves v untouched so the caller can apply its defaults.
func Load(path string, kind Kind, v any) (exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("registry file not found")
		return false, nil
	}
	if err != nil {
		return false, errdefs.Persistence("reading", path, err)
	}

	result, err := Validate(kind, data)
	if err != nil {
		return true, errdefs.Persistence("parsing", path, err)
	}
	if !result.Valid {
		return true, errdefs.Persistence("validating", path, &InvalidError{Issues: result.Issues})
	}

	if err := toml.Unmarshal(data, v); err != nil {
		return true, errdefs.Persistence("decoding", path, err)
	}
	log.Debug().Str("path", path).Str("kind", string(kind)).Msg("loaded registry")
	return true, nil
}

// Save encodes v as TOML and atomically replaces the file at path. Map keys
// are written in sorted order.
func Save(path string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errdefs.Persistence("encoding", path, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return errdefs.Persistence("writing", path, err)
	}
	log.Debug().Str("path", path).Msg("saved registry")
	return nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a half-written registry.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// InvalidError lists the schema violations found in a registry file.
type InvalidError struct {
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return printer.Sprintf("%d schema violation(s): %s", len(e.Issues), strings.Join(parts, "; "))
}
