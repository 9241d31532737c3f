package pkgtype

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gpm-labs/gpm/internal/errdefs"
	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/manifest"
	"github.com/gpm-labs/gpm/internal/platform"
	"github.com/gpm-labs/gpm/internal/process"
	"github.com/gpm-labs/gpm/internal/recovery"
)

// Type binds a package type name to its script and shell.
type Type struct {
	Name  string `json:"name"`
	Ext   string `json:"ext"`             // script extension without the dot
	Shell string `json:"shell,omitempty"` // empty means DefaultShell()
}

// typesFile is the on-disk form of types.toml.
type typesFile struct {
	Shell map[string][]string  `toml:"shell"`
	Types map[string]typeEntry `toml:"types"`
}

type typeEntry struct {
	Ext   string `toml:"ext"`
	Shell string `toml:"shell,omitempty"`
}

// Registry is the loaded type registry.
type Registry struct {
	path    string
	scripts string
	shells  map[string][]string
	types   map[string]typeEntry
	invoker process.Invoker
}

// New returns an empty registry with the platform's default shell. Scripts
// are run with inv.
func New(c home.Context, inv process.Invoker) *Registry {
	return &Registry{
		path:    c.TypesPath(),
		scripts: c.Scripts,
		shells:  DefaultShells(),
		types:   map[string]typeEntry{},
		invoker: inv,
	}
}

// Load reads types.toml from the home in c. A missing file yields the same
// registry as New.
func Load(c home.Context, inv process.Invoker) (*Registry, error) {
	r := New(c, inv)

	var f typesFile
	exists, err := manifest.Load(r.path, manifest.KindTypes, &f)
	if err != nil {
		return nil, err
	}
	if !exists {
		return r, nil
	}

	r.shells = f.Shell
	if r.shells == nil {
		r.shells = map[string][]string{}
	}
	for name, args := range r.shells {
		if args == nil {
			r.shells[name] = []string{}
		}
	}
	if f.Types != nil {
		r.types = f.Types
	}
	return r, nil
}

// Save writes the registry back to types.toml.
func (r *Registry) Save() error {
	return manifest.Save(r.path, typesFile{Shell: r.shells, Types: r.types})
}

// Add registers a type and creates an empty script stub for it under the
// script root unless one already exists. An empty shell binds the type to
// DefaultShell().
func (r *Registry) Add(name, ext, shell string) error {
	if err := errdefs.CheckName("type", name); err != nil {
		return err
	}
	if _, ok := r.types[name]; ok {
		return errdefs.AlreadyExists("type", name)
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return fmt.Errorf("type %q needs a script extension", name)
	}
	if err := errdefs.CheckName("extension", ext); err != nil {
		return err
	}
	bound := shell
	if bound == "" {
		bound = DefaultShell()
	}
	if _, ok := r.shells[bound]; !ok {
		return errdefs.UnknownShell(bound, r.ShellNames())
	}

	t := Type{Name: name, Ext: ext, Shell: shell}
	if err := r.ensureScript(r.ScriptPath(t)); err != nil {
		return err
	}
	r.types[name] = typeEntry{Ext: ext, Shell: shell}
	return nil
}

func (r *Registry) ensureScript(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), home.DirPerm); err != nil {
		return errdefs.Filesystem("creating", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, nil, platform.ScriptPerm); err != nil {
		return errdefs.Filesystem("creating", path, err)
	}
	if err := platform.Chmod(path, platform.ScriptPerm); err != nil {
		return errdefs.Filesystem("setting permissions on", path, err)
	}
	log.Debug().Str("path", path).Msg("created script stub")
	return nil
}

// Remove unregisters each named type. Unless registryOnly is set it also
// deletes the type's script; when that fails, d decides whether the type is
// unregistered anyway. Every name gets an Outcome, in the order given.
func (r *Registry) Remove(names []string, registryOnly bool, d recovery.Decider) []recovery.Outcome {
	outcomes := make([]recovery.Outcome, 0, len(names))
	for _, name := range names {
		entry, ok := r.types[name]
		if !ok {
			outcomes = append(outcomes, recovery.Outcome{Name: name, Err: errdefs.NotFound("type", name, r.Names())})
			continue
		}

		var o recovery.Outcome
		if registryOnly {
			o = recovery.Outcome{Name: name, Removed: true}
		} else if err := checkScriptNames(name, entry.Ext); err != nil {
			o = recovery.Outcome{Name: name, Err: err}
		} else {
			t := Type{Name: name, Ext: entry.Ext}
			script, post := r.ScriptPath(t), r.PostScriptPath(t)
			o = recovery.Attempt(d, name, func() error {
				if err := os.Remove(script); err != nil {
					return errdefs.Filesystem("removing", script, err)
				}
				if err := os.Remove(post); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return errdefs.Filesystem("removing", post, err)
				}
				return nil
			})
		}
		if o.Removed {
			delete(r.types, name)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// checkScriptNames rejects entries from a hand-edited types.toml whose
// script path would leave the script root.
func checkScriptNames(name, ext string) error {
	if err := errdefs.CheckName("type", name); err != nil {
		return err
	}
	return errdefs.CheckName("extension", ext)
}

// Resolve returns the type called name.
func (r *Registry) Resolve(name string) (Type, error) {
	entry, ok := r.types[name]
	if !ok {
		return Type{}, errdefs.UnknownType(name, r.Names())
	}
	return Type{Name: name, Ext: entry.Ext, Shell: entry.Shell}, nil
}

// ResolveShell returns the shell t runs under.
func (r *Registry) ResolveShell(t Type) (Shell, error) {
	name := t.Shell
	if name == "" {
		name = DefaultShell()
	}
	args, ok := r.shells[name]
	if !ok {
		return Shell{}, errdefs.UnknownShell(name, r.ShellNames())
	}
	return Shell{Name: name, Args: args}, nil
}

// ScriptPath returns <script root>/<name>.<ext>.
func (r *Registry) ScriptPath(t Type) string {
	return filepath.Join(r.scripts, t.Name+"."+t.Ext)
}

// PostScriptPath returns the optional post-hook script <name>.post.<ext>.
func (r *Registry) PostScriptPath(t Type) string {
	return filepath.Join(r.scripts, t.Name+".post."+t.Ext)
}

// Invocation is one run of a package's type script.
type Invocation struct {
	Type       string
	Package    string
	RepoPath   string   // working directory of the script
	CacheToken string   // passed as -etag when non-empty
	WorkingDir string   // passed as -cwd when non-empty
	Args       []string // always after the gpm-supplied flags
}

// BuildInvocation returns the command for inv:
//
//	shell shellArgs... script -name <package> [-cwd <dir>] [-etag <token>] args...
//
// The flags always precede inv.Args, so caller arguments that look like
// flags cannot displace them.
func (r *Registry) BuildInvocation(inv Invocation) (process.Command, error) {
	t, err := r.Resolve(inv.Type)
	if err != nil {
		return process.Command{}, err
	}
	return r.buildCommand(t, r.ScriptPath(t), inv)
}

func (r *Registry) buildCommand(t Type, script string, inv Invocation) (process.Command, error) {
	sh, err := r.ResolveShell(t)
	if err != nil {
		return process.Command{}, err
	}

	flags := []process.Flag{{Name: "-name", Value: inv.Package}}
	if inv.WorkingDir != "" {
		flags = append(flags, process.Flag{Name: "-cwd", Value: inv.WorkingDir})
	}
	if inv.CacheToken != "" {
		flags = append(flags, process.Flag{Name: "-etag", Value: inv.CacheToken})
	}

	return process.Command{
		Shell:     sh.Name,
		ShellArgs: slices.Clone(sh.Args),
		Script:    script,
		Flags:     flags,
		Args:      slices.Clone(inv.Args),
		Dir:       inv.RepoPath,
	}, nil
}

// Execute runs the main script for inv and returns its trimmed output.
func (r *Registry) Execute(ctx context.Context, inv Invocation) (string, error) {
	cmd, err := r.BuildInvocation(inv)
	if err != nil {
		return "", err
	}
	log.Debug().Str("type", inv.Type).Str("shell", cmd.Shell).Str("package", inv.Package).Msg("resolved invocation")
	return r.invoker.Run(ctx, cmd)
}

// ExecutePost runs the post-hook script for inv if the type has one. Without
// a post-hook it does nothing and returns empty output.
func (r *Registry) ExecutePost(ctx context.Context, inv Invocation) (string, error) {
	t, err := r.Resolve(inv.Type)
	if err != nil {
		return "", err
	}
	script := r.PostScriptPath(t)
	if _, err := os.Stat(script); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("type", t.Name).Msg("no post-hook script")
			return "", nil
		}
		return "", errdefs.Filesystem("checking", script, err)
	}

	cmd, err := r.buildCommand(t, script, inv)
	if err != nil {
		return "", err
	}
	return r.invoker.Run(ctx, cmd)
}

// AddShell registers a shell with the arguments placed before every script.
func (r *Registry) AddShell(name string, args []string) error {
	if _, ok := r.shells[name]; ok {
		return errdefs.AlreadyExists("shell", name)
	}
	if args == nil {
		args = []string{}
	}
	r.shells[name] = args
	return nil
}

// RemoveShell unregisters a shell. A shell still bound to a type is kept.
func (r *Registry) RemoveShell(name string) error {
	if _, ok := r.shells[name]; !ok {
		return errdefs.NotFound("shell", name, r.ShellNames())
	}
	var users []string
	for _, t := range r.Types() {
		if t.Shell == name || (t.Shell == "" && name == DefaultShell()) {
			users = append(users, t.Name)
		}
	}
	if len(users) > 0 {
		return fmt.Errorf("shell %q is still used by %s", name, strings.Join(users, ", "))
	}
	delete(r.shells, name)
	return nil
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []Type {
	types := make([]Type, 0, len(r.types))
	for _, name := range r.Names() {
		e := r.types[name]
		types = append(types, Type{Name: name, Ext: e.Ext, Shell: e.Shell})
	}
	return types
}

// Shells returns the registered shells sorted by name.
func (r *Registry) Shells() []Shell {
	shells := make([]Shell, 0, len(r.shells))
	for _, name := range r.ShellNames() {
		shells = append(shells, Shell{Name: name, Args: r.shells[name]})
	}
	return shells
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	return sortedKeys(r.types)
}

// ShellNames returns the registered shell names, sorted.
func (r *Registry) ShellNames() []string {
	return sortedKeys(r.shells)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
