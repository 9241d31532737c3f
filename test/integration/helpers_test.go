//go:build integration

package integration_test

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gpm-labs/gpm/internal/home"
	"github.com/gpm-labs/gpm/internal/pkgtype"
	"github.com/gpm-labs/gpm/internal/process"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir      string // GPM_HOME
	ScriptsDir   string // GPM_SCRIPTS, where type scripts live
	ReposDir     string // GPM_REPOSITORIES, default parent of repositories
	UpstreamFile string // GPM_TEST_UPSTREAM, the "latest release" scripts read
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all gpm operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("bash scripts are not run on windows")
	}
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available, skipping")
	}

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ScriptsDir: t.TempDir(),
		ReposDir:   t.TempDir(),
	}
	env.UpstreamFile = filepath.Join(t.TempDir(), "upstream")

	t.Setenv("GPM_HOME", env.HomeDir)
	t.Setenv("GPM_SCRIPTS", env.ScriptsDir)
	t.Setenv("GPM_REPOSITORIES", env.ReposDir)
	t.Setenv("GPM_TEST_UPSTREAM", env.UpstreamFile)
	return env
}

// releaseScript installs the package named by -name by writing the upstream
// version into it. It prints the version as the cache token and prints
// nothing when the stored token is already current.
const releaseScript = `name="$2"; shift 2
etag=""
if [ "$1" = "-etag" ]; then etag="$2"; shift 2; fi
latest=$(cat "$GPM_TEST_UPSTREAM")
if [ "$latest" = "$etag" ]; then exit 0; fi
echo "$latest" > "$name"
echo "$latest"
`

// setupTypes resolves the sandboxed home and registers the "release" type
// backed by releaseScript. bash runs scripts as files so they receive their
// arguments.
func setupTypes(t *testing.T) (home.Context, *pkgtype.Registry) {
	t.Helper()

	c, err := home.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := c.Init(io.Discard); err != nil {
		t.Fatalf("Init: %v", err)
	}

	types := pkgtype.New(c, &process.Runner{Stdin: strings.NewReader(""), Stderr: io.Discard})
	if err := types.RemoveShell("bash"); err != nil {
		t.Fatalf("RemoveShell: %v", err)
	}
	if err := types.AddShell("bash", nil); err != nil {
		t.Fatalf("AddShell: %v", err)
	}
	if err := types.Add("release", "sh", "bash"); err != nil {
		t.Fatalf("Add type: %v", err)
	}
	writeFile(t, filepath.Join(c.Scripts, "release.sh"), releaseScript)
	if err := types.Save(); err != nil {
		t.Fatalf("Save types: %v", err)
	}
	return c, types
}

// publish sets the upstream version the release script installs.
func publish(t *testing.T, env *testEnv, version string) {
	t.Helper()
	writeFile(t, env.UpstreamFile, version+"\n")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
