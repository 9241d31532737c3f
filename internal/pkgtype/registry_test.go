package pkgtype

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpm-labs/gpm/internal/errdefs"
	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/platform"
	"github.com/gpm-labs/gpm/internal/process"
	"github.com/gpm-labs/gpm/internal/recovery"
)

type fakeInvoker struct {
	calls  []process.Command
	output string
}

func (f *fakeInvoker) Run(_ context.Context, c process.Command) (string, error) {
	f.calls = append(f.calls, c)
	return f.output, nil
}

func newRegistry(t *testing.T) (*Registry, home.Context, *fakeInvoker) {
	t.Helper()
	c := home.New(t.TempDir())
	inv := &fakeInvoker{}
	return New(c, inv), c, inv
}

func TestNew_DefaultShell(t *testing.T) {
	r, _, _ := newRegistry(t)

	shells := r.Shells()
	require.Len(t, shells, 1)
	assert.Equal(t, DefaultShell(), shells[0].Name)
	assert.Equal(t, []string{"-c"}, shells[0].Args)
	if runtime.GOOS == "windows" {
		assert.Equal(t, "powershell", DefaultShell())
	} else {
		assert.Equal(t, "bash", DefaultShell())
	}
}

func TestAdd_CreatesScriptStub(t *testing.T) {
	r, c, _ := newRegistry(t)

	require.NoError(t, r.Add("git", "sh", ""))

	path := filepath.Join(c.Scripts, "git.sh")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	if runtime.GOOS != "windows" {
		assert.Equal(t, platform.ScriptPerm, info.Mode().Perm())
	}

	typ, err := r.Resolve("git")
	require.NoError(t, err)
	assert.Equal(t, Type{Name: "git", Ext: "sh"}, typ)
}

func TestAdd_KeepsExistingScript(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, os.MkdirAll(c.Scripts, 0755))
	path := filepath.Join(c.Scripts, "git.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo hi"), 0755))

	require.NoError(t, r.Add("git", ".sh", ""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo hi", string(data))
}

func TestAdd_AlreadyExists(t *testing.T) {
	r, _, _ := newRegistry(t)
	require.NoError(t, r.Add("git", "sh", ""))

	err := r.Add("git", "ps1", "")
	assert.ErrorIs(t, err, errdefs.ErrAlreadyExists)

	typ, _ := r.Resolve("git")
	assert.Equal(t, "sh", typ.Ext, "existing entry must not change")
}

func TestAdd_UnknownShell(t *testing.T) {
	r, c, _ := newRegistry(t)

	err := r.Add("git", "sh", "zsh")
	assert.ErrorIs(t, err, errdefs.ErrUnknownShell)
	assert.Empty(t, r.Types())
	assert.NoFileExists(t, filepath.Join(c.Scripts, "git.sh"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, r.AddShell("pwsh", []string{"-NoProfile", "-File"}))
	require.NoError(t, r.AddShell("sh", nil))
	require.NoError(t, r.Add("git", "sh", "sh"))
	require.NoError(t, r.Add("github", "ps1", "pwsh"))
	require.NoError(t, r.Add("url", "sh", ""))
	require.NoError(t, r.Save())

	loaded, err := Load(c, &fakeInvoker{})
	require.NoError(t, err)
	assert.Equal(t, r.Types(), loaded.Types())
	assert.Equal(t, r.Shells(), loaded.Shells())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c := home.New(t.TempDir())
	r, err := Load(c, &fakeInvoker{})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultShell()}, r.ShellNames())
	assert.Empty(t, r.Types())
}

func TestLoad_InvalidFile(t *testing.T) {
	c := home.New(t.TempDir())
	require.NoError(t, os.WriteFile(c.TypesPath(), []byte("[types.git]\nshell = \"bash\"\n"), 0644))

	_, err := Load(c, &fakeInvoker{})
	assert.ErrorIs(t, err, errdefs.ErrPersistence)
}

func TestRemove(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, r.Add("git", "sh", ""))
	require.NoError(t, r.Add("url", "sh", ""))

	outcomes := r.Remove([]string{"git", "nope"}, false, recovery.Fixed(false))
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Removed)
	assert.NoError(t, outcomes[0].Err)
	assert.NoFileExists(t, filepath.Join(c.Scripts, "git.sh"))

	assert.False(t, outcomes[1].Removed)
	assert.ErrorIs(t, outcomes[1].Err, errdefs.ErrNotFound)

	assert.Equal(t, []string{"url"}, r.Names())
}

func TestRemove_RegistryOnlyKeepsScript(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, r.Add("git", "sh", ""))

	outcomes := r.Remove([]string{"git"}, true, nil)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Removed)
	assert.FileExists(t, filepath.Join(c.Scripts, "git.sh"))
	assert.Empty(t, r.Names())
}

func TestRemove_FailureConsultsDecider(t *testing.T) {
	for _, answer := range []bool{false, true} {
		r, c, _ := newRegistry(t)
		require.NoError(t, r.Add("git", "sh", ""))
		require.NoError(t, os.Remove(filepath.Join(c.Scripts, "git.sh")))

		outcomes := r.Remove([]string{"git"}, false, recovery.Fixed(answer))
		require.Len(t, outcomes, 1)
		assert.ErrorIs(t, outcomes[0].Err, errdefs.ErrFilesystem)
		assert.Equal(t, answer, outcomes[0].Removed)
		assert.Equal(t, answer, outcomes[0].Forced)
		if answer {
			assert.Empty(t, r.Names())
		} else {
			assert.Equal(t, []string{"git"}, r.Names())
		}
	}
}

func TestRemove_DeletesPostScript(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, r.Add("git", "sh", ""))
	require.NoError(t, r.Add("url", "sh", ""))
	post := filepath.Join(c.Scripts, "git.post.sh")
	require.NoError(t, os.WriteFile(post, []byte("echo linked"), 0755))

	outcomes := r.Remove([]string{"git", "url"}, false, recovery.Fixed(false))
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Removed)
	assert.True(t, outcomes[1].Removed, "a missing post script is not an error")
	assert.NoError(t, outcomes[1].Err)
	assert.NoFileExists(t, post)

	require.NoError(t, r.Add("git", "sh", ""))
	assert.NoFileExists(t, post, "re-adding the type must not revive the old post-hook")
}

func TestAdd_RejectsPathNames(t *testing.T) {
	r, c, _ := newRegistry(t)
	tests := []struct{ name, ext string }{
		{"..", "sh"},
		{".", "sh"},
		{"", "sh"},
		{"sub/git", "sh"},
		{`sub\git`, "sh"},
		{"git", "sh/../../x"},
	}
	for _, tt := range tests {
		err := r.Add(tt.name, tt.ext, "")
		assert.ErrorIs(t, err, errdefs.ErrInvalidName, "%q.%q", tt.name, tt.ext)
	}
	assert.Empty(t, r.Names())
	entries, err := os.ReadDir(c.Home)
	require.NoError(t, err)
	assert.Empty(t, entries, "no script stub was written")
}

func TestRemove_RefusesPathNamesFromHandEditedFile(t *testing.T) {
	c := home.New(filepath.Join(t.TempDir(), "home"))
	require.NoError(t, os.MkdirAll(c.Scripts, 0755))
	outside := filepath.Join(c.Home, "x.sh")
	require.NoError(t, os.WriteFile(outside, nil, 0644))
	require.NoError(t, os.WriteFile(c.TypesPath(), []byte("[types.\"../x\"]\next = \"sh\"\n"), 0644))

	r, err := Load(c, &fakeInvoker{})
	require.NoError(t, err)

	outcomes := r.Remove([]string{"../x"}, false, recovery.Fixed(true))
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, errdefs.ErrInvalidName)
	assert.FileExists(t, outside)
	assert.Equal(t, []string{"../x"}, r.Names())
}

func TestResolve_UnknownTypeHint(t *testing.T) {
	r, _, _ := newRegistry(t)
	require.NoError(t, r.Add("github", "sh", ""))

	_, err := r.Resolve("githb")
	require.ErrorIs(t, err, errdefs.ErrUnknownType)
	assert.Contains(t, err.Error(), `did you mean "github"?`)
}

func TestBuildInvocation_ArgumentOrder(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, r.Add("git", "sh", ""))
	script := filepath.Join(c.Scripts, "git.sh")

	tests := []struct {
		name string
		inv  Invocation
		want []string
	}{
		{
			name: "name only",
			inv:  Invocation{Type: "git", Package: "rg", RepoPath: "/repo"},
			want: []string{"-c", script, "-name", "rg"},
		},
		{
			name: "token",
			inv:  Invocation{Type: "git", Package: "rg", RepoPath: "/repo", CacheToken: "abc"},
			want: []string{"-c", script, "-name", "rg", "-etag", "abc"},
		},
		{
			name: "cwd and token before args",
			inv: Invocation{Type: "git", Package: "rg", RepoPath: "/repo", CacheToken: "abc",
				WorkingDir: "/work", Args: []string{"BurntSushi/ripgrep"}},
			want: []string{"-c", script, "-name", "rg", "-cwd", "/work", "-etag", "abc", "BurntSushi/ripgrep"},
		},
		{
			name: "args that look like flags",
			inv: Invocation{Type: "git", Package: "rg", RepoPath: "/repo",
				Args: []string{"-name", "evil", "-etag", "forged", "-cwd", "/"}},
			want: []string{"-c", script, "-name", "rg", "-name", "evil", "-etag", "forged", "-cwd", "/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := r.BuildInvocation(tt.inv)
			require.NoError(t, err)
			assert.Equal(t, DefaultShell(), cmd.Shell)
			assert.Equal(t, tt.want, cmd.Argv())
			assert.Equal(t, "/repo", cmd.Dir)
		})
	}
}

func TestBuildInvocation_Errors(t *testing.T) {
	r, _, _ := newRegistry(t)
	_, err := r.BuildInvocation(Invocation{Type: "git", Package: "rg"})
	assert.ErrorIs(t, err, errdefs.ErrUnknownType)

	require.NoError(t, r.AddShell("sh", nil))
	require.NoError(t, r.Add("git", "sh", "sh"))
	delete(r.shells, "sh")
	_, err = r.BuildInvocation(Invocation{Type: "git", Package: "rg"})
	assert.ErrorIs(t, err, errdefs.ErrUnknownShell)
}

func TestBuildInvocation_CustomShell(t *testing.T) {
	r, c, _ := newRegistry(t)
	require.NoError(t, r.AddShell("pwsh", []string{"-NoProfile", "-File"}))
	require.NoError(t, r.Add("github", "ps1", "pwsh"))

	cmd, err := r.BuildInvocation(Invocation{Type: "github", Package: "gh", RepoPath: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, "pwsh", cmd.Shell)
	assert.Equal(t, []string{"-NoProfile", "-File", filepath.Join(c.Scripts, "github.ps1"), "-name", "gh"}, cmd.Argv())
}

func TestExecute(t *testing.T) {
	r, _, inv := newRegistry(t)
	inv.output = "v1"
	require.NoError(t, r.Add("git", "sh", ""))

	out, err := r.Execute(context.Background(), Invocation{Type: "git", Package: "rg", RepoPath: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, "v1", out)
	require.Len(t, inv.calls, 1)
}

func TestExecutePost(t *testing.T) {
	r, c, inv := newRegistry(t)
	require.NoError(t, r.Add("git", "sh", ""))

	out, err := r.ExecutePost(context.Background(), Invocation{Type: "git", Package: "rg", RepoPath: "/repo"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, inv.calls, "no post-hook script, nothing runs")

	post := filepath.Join(c.Scripts, "git.post.sh")
	require.NoError(t, os.WriteFile(post, nil, 0755))
	inv.output = "ignored"

	_, err = r.ExecutePost(context.Background(), Invocation{Type: "git", Package: "rg", RepoPath: "/repo",
		CacheToken: "v2", Args: []string{"--link"}})
	require.NoError(t, err)
	require.Len(t, inv.calls, 1)
	assert.Equal(t, []string{"-c", post, "-name", "rg", "-etag", "v2", "--link"}, inv.calls[0].Argv())
}

func TestShells(t *testing.T) {
	r, _, _ := newRegistry(t)

	require.NoError(t, r.AddShell("zsh", []string{"-c"}))
	assert.ErrorIs(t, r.AddShell("zsh", nil), errdefs.ErrAlreadyExists)
	assert.ErrorIs(t, r.RemoveShell("fish"), errdefs.ErrNotFound)

	require.NoError(t, r.Add("git", "sh", "zsh"))
	err := r.RemoveShell("zsh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git")

	r.Remove([]string{"git"}, true, nil)
	require.NoError(t, r.RemoveShell("zsh"))
	assert.Equal(t, []string{DefaultShell()}, r.ShellNames())
}

func TestTypesSorted(t *testing.T) {
	r, _, _ := newRegistry(t)
	for _, name := range []string{"url", "git", "github"} {
		require.NoError(t, r.Add(name, "sh", ""))
	}
	assert.Equal(t, []string{"git", "github", "url"}, r.Names())

	var names []string
	for _, typ := range r.Types() {
		names = append(names, typ.Name)
	}
	assert.Equal(t, r.Names(), names)
}

