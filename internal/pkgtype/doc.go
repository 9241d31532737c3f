// Package pkgtype maintains the type registry (types.toml): the shells gpm
// knows how to run, and the package types, each bound to a script under the
// script root and to one of those shells. It also turns a package invocation
// into the exact command line a type script is run with.
package pkgtype
