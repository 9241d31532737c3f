// Package registry maintains the repository registry (config.toml): the named
// directories gpm manages, each holding its own package registry.
package registry
