package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/gpm-labs/gpm/internal/errdefs"
	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/manifest"
	"github.com/gpm-labs/gpm/internal/pkgtype"
	"github.com/gpm-labs/gpm/internal/platform"
	"github.com/gpm-labs/gpm/internal/recovery"
)

// ErrPostHook marks a failed post-hook run. The main script had already
// succeeded, so the package and its new cache token are kept.
var ErrPostHook = errors.New("post-hook failed")

// Package is one entry of a repository's package registry.
type Package struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Args       []string `json:"args"`
	PostArgs   []string `json:"post_args,omitempty"`
	CacheToken string   `json:"etag,omitempty"`
	WorkingDir string   `json:"cwd,omitempty"`
}

type packageEntry struct {
	Type       string   `toml:"type"`
	Args       []string `toml:"args"`
	PostArgs   []string `toml:"post_args,omitempty"`
	CacheToken string   `toml:"etag,omitempty"`
	WorkingDir string   `toml:"cwd,omitempty"`
}

// versionFile is the on-disk form of version.toml.
type versionFile struct {
	Packages map[string]packageEntry `toml:"packages"`
}

// Executor runs type scripts. *pkgtype.Registry implements it.
type Executor interface {
	Execute(ctx context.Context, inv pkgtype.Invocation) (string, error)
	ExecutePost(ctx context.Context, inv pkgtype.Invocation) (string, error)
}

// Repo is the loaded package registry of one repository.
type Repo struct {
	path     string
	packages map[string]packageEntry
	exec     Executor
}

// InitFile writes an empty package registry into dir.
func InitFile(dir string) error {
	return manifest.Save(home.RepoConfigPath(dir), versionFile{Packages: map[string]packageEntry{}})
}

// Load reads the package registry of the repository at dir. Unlike the
// global registries, a missing version.toml is an error: it means the
// directory is not a repository or has been damaged.
func Load(dir string, exec Executor) (*Repo, error) {
	path := home.RepoConfigPath(dir)
	var f versionFile
	exists, err := manifest.Load(path, manifest.KindPackages, &f)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errdefs.Persistence("loading", path, fs.ErrNotExist)
	}
	if f.Packages == nil {
		f.Packages = map[string]packageEntry{}
	}
	return &Repo{path: dir, packages: f.Packages, exec: exec}, nil
}

// Save writes the package registry back into the repository directory.
func (r *Repo) Save() error {
	return manifest.Save(home.RepoConfigPath(r.path), versionFile{Packages: r.packages})
}

// Path returns the repository directory.
func (r *Repo) Path() string { return r.path }

// Add runs p's type script for the first time and registers p once the run
// succeeds; a failed run leaves the registry untouched. Non-empty output
// becomes the cache token and triggers the post-hook with p.PostArgs. A
// post-hook failure is reported as ErrPostHook with p still registered.
func (r *Repo) Add(ctx context.Context, p Package) error {
	if err := errdefs.CheckName("package", p.Name); err != nil {
		return err
	}
	if _, ok := r.packages[p.Name]; ok {
		return errdefs.AlreadyExists("package", p.Name)
	}

	entry := packageEntry{
		Type:       p.Type,
		Args:       nonNil(p.Args),
		PostArgs:   nilIfEmpty(p.PostArgs),
		WorkingDir: p.WorkingDir,
	}
	out, err := r.exec.Execute(ctx, r.invocation(p.Name, entry, entry.Args))
	if err != nil {
		return fmt.Errorf("adding package %s: %w", p.Name, err)
	}

	entry.CacheToken = out
	r.packages[p.Name] = entry
	log.Debug().Str("package", p.Name).Str("etag", out).Msg("package added")

	if out != "" {
		if err := r.runPost(ctx, p.Name, entry); err != nil {
			return err
		}
	}
	return nil
}

// UpdateResult reports the outcome of updating one package.
type UpdateResult struct {
	Name    string
	Token   string // cache token after the update
	Changed bool   // the script returned a token different from the stored one
	Ran     bool   // the script returned a token, so the post-hook ran
	Err     error
}

// Update re-runs the type script of each named package, passing the stored
// cache token. Empty output leaves the package untouched; non-empty output
// replaces the token and runs the post-hook once. A failure on one package
// does not stop the others.
func (r *Repo) Update(ctx context.Context, names []string) []UpdateResult {
	results := make([]UpdateResult, 0, len(names))
	for _, name := range names {
		results = append(results, r.update(ctx, name))
	}
	return results
}

// UpdateAll updates every package in name order.
func (r *Repo) UpdateAll(ctx context.Context) []UpdateResult {
	return r.Update(ctx, r.Names())
}

func (r *Repo) update(ctx context.Context, name string) UpdateResult {
	entry, ok := r.packages[name]
	if !ok {
		return UpdateResult{Name: name, Err: errdefs.NotFound("package", name, r.Names())}
	}

	out, err := r.exec.Execute(ctx, r.invocation(name, entry, entry.Args))
	if err != nil {
		return UpdateResult{Name: name, Token: entry.CacheToken, Err: fmt.Errorf("updating package %s: %w", name, err)}
	}
	if out == "" {
		log.Debug().Str("package", name).Msg("script returned no token, nothing to do")
		return UpdateResult{Name: name, Token: entry.CacheToken}
	}

	res := UpdateResult{Name: name, Token: out, Changed: out != entry.CacheToken, Ran: true}
	entry.CacheToken = out
	r.packages[name] = entry
	res.Err = r.runPost(ctx, name, entry)
	return res
}

func (r *Repo) runPost(ctx context.Context, name string, entry packageEntry) error {
	if _, err := r.exec.ExecutePost(ctx, r.invocation(name, entry, nonNil(entry.PostArgs))); err != nil {
		return fmt.Errorf("%w for package %s: %w", ErrPostHook, name, err)
	}
	return nil
}

func (r *Repo) invocation(name string, entry packageEntry, args []string) pkgtype.Invocation {
	return pkgtype.Invocation{
		Type:       entry.Type,
		Package:    name,
		RepoPath:   r.path,
		CacheToken: entry.CacheToken,
		WorkingDir: entry.WorkingDir,
		Args:       args,
	}
}

// ArtifactPath returns the file or directory a package's script maintains
// inside the repository.
func (r *Repo) ArtifactPath(name string) string {
	return filepath.Join(r.path, name)
}

// Remove unregisters each named package. Unless registryOnly is set it first
// deletes the package's artifact; when that fails, d decides whether the
// package is unregistered anyway.
func (r *Repo) Remove(names []string, registryOnly bool, d recovery.Decider) []recovery.Outcome {
	outcomes := make([]recovery.Outcome, 0, len(names))
	for _, name := range names {
		if _, ok := r.packages[name]; !ok {
			outcomes = append(outcomes, recovery.Outcome{Name: name, Err: errdefs.NotFound("package", name, r.Names())})
			continue
		}

		var o recovery.Outcome
		if registryOnly {
			o = recovery.Outcome{Name: name, Removed: true}
		} else if err := errdefs.CheckName("package", name); err != nil {
			// Hand-edited entries can name paths outside the repository.
			o = recovery.Outcome{Name: name, Err: err}
		} else {
			artifact := r.ArtifactPath(name)
			o = recovery.Attempt(d, name, func() error {
				if err := platform.RemovePath(artifact); err != nil {
					return errdefs.Filesystem("removing", artifact, err)
				}
				return nil
			})
		}
		if o.Removed {
			delete(r.packages, name)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// RemoveCacheTokens clears the cache token of every package and returns how
// many packages had one. The next update runs each script as if it had never
// run before.
func (r *Repo) RemoveCacheTokens() int {
	cleared := 0
	for name, entry := range r.packages {
		if entry.CacheToken == "" {
			continue
		}
		entry.CacheToken = ""
		r.packages[name] = entry
		cleared++
	}
	return cleared
}

// CopyResult reports the outcome of copying one package's artifact.
type CopyResult struct {
	Name string
	Dest string
	Err  error
}

// Copy copies each named package's artifact into dest, recursively for
// directories. The registry is not modified.
func (r *Repo) Copy(names []string, dest string) []CopyResult {
	results := make([]CopyResult, 0, len(names))
	for _, name := range names {
		results = append(results, r.copy(name, dest))
	}
	return results
}

func (r *Repo) copy(name, dest string) CopyResult {
	if _, ok := r.packages[name]; !ok {
		return CopyResult{Name: name, Err: errdefs.NotFound("package", name, r.Names())}
	}
	if err := errdefs.CheckName("package", name); err != nil {
		return CopyResult{Name: name, Err: err}
	}
	src := r.ArtifactPath(name)
	to := filepath.Join(dest, name)
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CopyResult{Name: name, Err: errdefs.NotFound("artifact", src, nil)}
		}
		return CopyResult{Name: name, Err: errdefs.Filesystem("reading", src, err)}
	}
	if err := platform.CopyPath(src, to); err != nil {
		return CopyResult{Name: name, Err: errdefs.Filesystem("copying", src, err)}
	}
	return CopyResult{Name: name, Dest: to}
}

// Get returns the package called name.
func (r *Repo) Get(name string) (Package, error) {
	entry, ok := r.packages[name]
	if !ok {
		return Package{}, errdefs.NotFound("package", name, r.Names())
	}
	return toPackage(name, entry), nil
}

// Packages returns every package sorted by name.
func (r *Repo) Packages() []Package {
	pkgs := make([]Package, 0, len(r.packages))
	for _, name := range r.Names() {
		pkgs = append(pkgs, toPackage(name, r.packages[name]))
	}
	return pkgs
}

// Names returns the package names, sorted.
func (r *Repo) Names() []string {
	names := make([]string, 0, len(r.packages))
	for name := range r.packages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func toPackage(name string, e packageEntry) Package {
	return Package{
		Name:       name,
		Type:       e.Type,
		Args:       nonNil(slices.Clone(e.Args)),
		PostArgs:   nilIfEmpty(slices.Clone(e.PostArgs)),
		CacheToken: e.CacheToken,
		WorkingDir: e.WorkingDir,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
