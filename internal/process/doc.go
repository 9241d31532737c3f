// Package process runs type scripts.
//
// A script runs under its type's shell with the repository as its working
// directory. Standard input and standard error are inherited so the script
// can prompt the user and report progress; standard output is captured,
// trimmed and returned to the caller, which treats a non-empty result as the
// package's new cache token.
package process
