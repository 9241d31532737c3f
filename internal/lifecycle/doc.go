// Package lifecycle manages the packages of one repository: the package
// registry (version.toml) kept inside the repository directory, the
// add/update/remove operations that run each package's type script, and the
// cache token a script hands back to be replayed on its next run.
//
// A package moves from absent to present when its first run succeeds, stays
// present across updates, and becomes absent again on removal. Nothing is
// written to disk until the caller saves the repository, once per command.
package lifecycle
