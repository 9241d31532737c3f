// Package errdefs defines the error kinds shared by the registries, the
// package engine and the process invoker. Kinds are sentinel errors, so
// callers classify failures with errors.Is regardless of how much context
// was wrapped around them.
package errdefs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gpm-labs/gpm/internal/suggest"
)

// Error kinds.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrUnknownType   = errors.New("unknown type")
	ErrUnknownShell  = errors.New("unknown shell")
	ErrProcessSpawn  = errors.New("process spawn failure")
	ErrOutputDecode  = errors.New("process output decode failure")
	ErrFilesystem    = errors.New("filesystem failure")
	ErrPersistence   = errors.New("persistence failure")
	ErrInvalidName   = errors.New("invalid name")
)

// NameError reports a registry lookup or collision on a named entry.
type NameError struct {
	Kind    error  // one of the sentinels above
	Subject string // "repository", "package", "type", "shell"
	Name    string
	Hint    string // closest registered name, if any
}

func (e *NameError) Error() string {
	var msg string
	switch e.Kind {
	case ErrAlreadyExists:
		msg = fmt.Sprintf("%s %q already exists", e.Subject, e.Name)
	case ErrInvalidName:
		msg = fmt.Sprintf("%s name %q is not a valid file name", e.Subject, e.Name)
	default:
		msg = fmt.Sprintf("%s %q does not exist", e.Subject, e.Name)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Hint)
	}
	return msg
}

func (e *NameError) Unwrap() error { return e.Kind }

// AlreadyExists returns an ErrAlreadyExists error for subject name.
func AlreadyExists(subject, name string) error {
	return &NameError{Kind: ErrAlreadyExists, Subject: subject, Name: name}
}

// NotFound returns an ErrNotFound error for subject name, with a hint drawn
// from known when one of them is close.
func NotFound(subject, name string, known []string) error {
	return &NameError{Kind: ErrNotFound, Subject: subject, Name: name, Hint: suggest.Closest(name, known)}
}

// UnknownType returns an ErrUnknownType error.
func UnknownType(name string, known []string) error {
	return &NameError{Kind: ErrUnknownType, Subject: "type", Name: name, Hint: suggest.Closest(name, known)}
}

// UnknownShell returns an ErrUnknownShell error.
func UnknownShell(name string, known []string) error {
	return &NameError{Kind: ErrUnknownShell, Subject: "shell", Name: name, Hint: suggest.Closest(name, known)}
}

// CheckName returns an ErrInvalidName error unless name can be used as a
// single path element: repositories, packages and types are all stored
// under their names.
func CheckName(subject, name string) error {
	switch {
	case name == "", name == ".", name == "..",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, filepath.Separator):
		return &NameError{Kind: ErrInvalidName, Subject: subject, Name: name}
	}
	return nil
}

// Filesystem wraps err as an ErrFilesystem failure while doing op on path.
func Filesystem(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrFilesystem, err)
}

// Persistence wraps err as an ErrPersistence failure while doing op on path.
func Persistence(op, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrPersistence, err)
}

// Kind returns a short label for the kind of err, or "error" when err does
// not carry one of the sentinels.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "already exists"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrUnknownType):
		return "unknown type"
	case errors.Is(err, ErrUnknownShell):
		return "unknown shell"
	case errors.Is(err, ErrProcessSpawn):
		return "spawn"
	case errors.Is(err, ErrOutputDecode):
		return "decode"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrInvalidName):
		return "invalid name"
	default:
		return "error"
	}
}
