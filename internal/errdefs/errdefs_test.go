package errdefs

import (
	"errors"
	"io/fs"
	"testing"
)

func TestNameError_Is(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"already exists", AlreadyExists("package", "rg"), ErrAlreadyExists, `package "rg" already exists`},
		{"not found", NotFound("repository", "x", nil), ErrNotFound, `repository "x" does not exist`},
		{"not found with hint", NotFound("repository", "tols", []string{"tools"}), ErrNotFound, `repository "tols" does not exist (did you mean "tools"?)`},
		{"unknown type", UnknownType("gti", nil), ErrUnknownType, `type "gti" does not exist`},
		{"unknown shell", UnknownShell("zsh", []string{"bash"}), ErrUnknownShell, `shell "zsh" does not exist`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := tt.err.Error(); got != tt.msg {
				t.Errorf("Error() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestFilesystemWrapsBoth(t *testing.T) {
	err := Filesystem("removing", "/tmp/x", fs.ErrNotExist)
	if !errors.Is(err, ErrFilesystem) {
		t.Error("expected ErrFilesystem")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected the underlying error to stay reachable")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{AlreadyExists("type", "git"), "already exists"},
		{Persistence("writing", "/x", errors.New("disk full")), "persistence"},
		{errors.New("plain"), "error"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCheckName(t *testing.T) {
	rejected := []string{"", ".", "..", "a/b", "../x", `a\b`, "/abs", "dir/"}
	for _, name := range rejected {
		t.Run("rejects "+name, func(t *testing.T) {
			err := CheckName("package", name)
			if !errors.Is(err, ErrInvalidName) {
				t.Fatalf("CheckName(%q) = %v, want ErrInvalidName", name, err)
			}
		})
	}

	for _, name := range []string{"rg", "node-18", "..hidden", "a.b", ".dotfile"} {
		if err := CheckName("package", name); err != nil {
			t.Errorf("CheckName(%q) = %v, want nil", name, err)
		}
	}

	err := CheckName("repository", "..")
	if got, want := err.Error(), `repository name ".." is not a valid file name`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
