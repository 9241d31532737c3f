// Package platform provides the cross-platform filesystem and shell helpers
// the registries need: permission changes, recursive copy and removal of
// package artifacts, and PowerShell argument quoting. On Unix systems it uses
// native symlinks and chmod directly; on Windows chmod is a no-op and symlinks
// fall back to a file copy with a .target sidecar.
package platform
