package home

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gpm-labs/gpm/internal/branding"
)

// Directory and file name constants for the home layout.
const (
	RepositoriesDir = "repositories"
	ScriptsDir      = "scripts"

	// ConfigFile holds the repository registry.
	ConfigFile = "config.toml"
	// TypesFile holds the type and shell registries.
	TypesFile = "types.toml"
	// RepoConfigFile is the package registry kept inside each repository directory.
	RepoConfigFile = "version.toml"
)

// DirPerm is the permission used for every directory gpm creates.
const DirPerm os.FileMode = 0755

// Context carries the resolved locations every registry works against. It is
// built once per invocation and passed to each constructor.
type Context struct {
	Home         string // e.g. ~/.gpm
	Scripts      string // type scripts, <Home>/scripts unless overridden
	Repositories string // default parent of new repositories
}

// New returns the Context rooted at home with the default layout.
func New(home string) Context {
	return Context{
		Home:         home,
		Scripts:      filepath.Join(home, ScriptsDir),
		Repositories: filepath.Join(home, RepositoriesDir),
	}
}

// Resolve builds the Context for this invocation.
//
// The home directory is taken from override, then the GPM_HOME environment
// variable, then ~/.gpm. GPM_SCRIPTS and GPM_REPOSITORIES replace the script
// root and the default repositories root independently.
func Resolve(override string) (Context, error) {
	home := override
	if home == "" {
		home = os.Getenv(branding.EnvVar("home"))
	}
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return Context{}, fmt.Errorf("resolving home directory: %w", err)
		}
		home = filepath.Join(userHome, branding.HomeDir())
	}

	abs, err := filepath.Abs(home)
	if err != nil {
		return Context{}, fmt.Errorf("resolving %s: %w", home, err)
	}

	c := New(abs)
	if v := os.Getenv(branding.EnvVar("scripts")); v != "" {
		c.Scripts = filepath.Clean(v)
	}
	if v := os.Getenv(branding.EnvVar("repositories")); v != "" {
		c.Repositories = filepath.Clean(v)
	}
	return c, nil
}

// ConfigPath returns the path of the repository registry file.
func (c Context) ConfigPath() string { return filepath.Join(c.Home, ConfigFile) }

// TypesPath returns the path of the type registry file.
func (c Context) TypesPath() string { return filepath.Join(c.Home, TypesFile) }

// DefaultRepoPath returns where a repository named name lives when no path
// is given explicitly.
func (c Context) DefaultRepoPath(name string) string {
	return filepath.Join(c.Repositories, name)
}

// RepoConfigPath returns the package registry file inside a repository directory.
func RepoConfigPath(repoDir string) string {
	return filepath.Join(repoDir, RepoConfigFile)
}
