package registry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/gpm-labs/gpm/internal/errdefs"
	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/lifecycle"
	"github.com/gpm-labs/gpm/internal/manifest"
	"github.com/gpm-labs/gpm/internal/platform"
	"github.com/gpm-labs/gpm/internal/recovery"
)

// Repository is a named directory tracked by gpm.
type Repository struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// configFile is the on-disk form of config.toml.
type configFile struct {
	Repositories map[string]repoEntry `toml:"repositories"`
}

type repoEntry struct {
	Path string `toml:"path"`
}

// Registry is the loaded repository registry.
type Registry struct {
	path  string
	repos map[string]repoEntry
}

// Load reads config.toml from the home in c. A missing file is an empty
// registry.
func Load(c home.Context) (*Registry, error) {
	r := &Registry{path: c.ConfigPath(), repos: map[string]repoEntry{}}

	var f configFile
	if _, err := manifest.Load(r.path, manifest.KindRepositories, &f); err != nil {
		return nil, err
	}
	if f.Repositories != nil {
		r.repos = f.Repositories
	}
	return r, nil
}

// Save writes the registry back to config.toml.
func (r *Registry) Save() error {
	return manifest.Save(r.path, configFile{Repositories: r.repos})
}

// Add registers a repository at path, creating the directory and its parents
// and an empty package registry inside it. A directory that already holds a
// package registry keeps it, so a repository dropped with RemoveRegistryOnly
// can be added back without losing its packages.
func (r *Registry) Add(name, path string) (Repository, error) {
	if err := errdefs.CheckName("repository", name); err != nil {
		return Repository{}, err
	}
	if _, ok := r.repos[name]; ok {
		return Repository{}, errdefs.AlreadyExists("repository", name)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Repository{}, errdefs.Filesystem("resolving", path, err)
	}
	if err := os.MkdirAll(abs, home.DirPerm); err != nil {
		return Repository{}, errdefs.Filesystem("creating", abs, err)
	}

	if _, err := os.Stat(home.RepoConfigPath(abs)); errors.Is(err, fs.ErrNotExist) {
		if err := lifecycle.InitFile(abs); err != nil {
			return Repository{}, err
		}
	} else {
		log.Debug().Str("path", abs).Msg("reusing existing package registry")
	}

	r.repos[name] = repoEntry{Path: abs}
	return Repository{Name: name, Path: abs}, nil
}

// Remove deletes each named repository's directory recursively and then
// unregisters it. When deleting fails, d decides whether the repository is
// unregistered anyway, leaving the directory behind.
func (r *Registry) Remove(names []string, d recovery.Decider) []recovery.Outcome {
	outcomes := make([]recovery.Outcome, 0, len(names))
	for _, name := range names {
		entry, ok := r.repos[name]
		if !ok {
			outcomes = append(outcomes, recovery.Outcome{Name: name, Err: errdefs.NotFound("repository", name, r.Names())})
			continue
		}

		o := recovery.Attempt(d, name, func() error {
			if err := platform.RemovePath(entry.Path); err != nil {
				return errdefs.Filesystem("removing", entry.Path, err)
			}
			return nil
		})
		if o.Removed {
			delete(r.repos, name)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// RemoveRegistryOnly unregisters each named repository without touching its
// directory.
func (r *Registry) RemoveRegistryOnly(names []string) []recovery.Outcome {
	outcomes := make([]recovery.Outcome, 0, len(names))
	for _, name := range names {
		if _, ok := r.repos[name]; !ok {
			outcomes = append(outcomes, recovery.Outcome{Name: name, Err: errdefs.NotFound("repository", name, r.Names())})
			continue
		}
		delete(r.repos, name)
		outcomes = append(outcomes, recovery.Outcome{Name: name, Removed: true})
	}
	return outcomes
}

// Get returns the repository called name.
func (r *Registry) Get(name string) (Repository, error) {
	entry, ok := r.repos[name]
	if !ok {
		return Repository{}, errdefs.NotFound("repository", name, r.Names())
	}
	return Repository{Name: name, Path: entry.Path}, nil
}

// List returns every repository sorted by name.
func (r *Registry) List() []Repository {
	repos := make([]Repository, 0, len(r.repos))
	for _, name := range r.Names() {
		repos = append(repos, Repository{Name: name, Path: r.repos[name].Path})
	}
	return repos
}

// Names returns the repository names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.repos))
	for name := range r.repos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
