// Package cli defines the Cobra command tree for the gpm CLI. Each file
// registers one top-level command (init, add, repo, type, etc.) with the
// root command. Commands load the registries they touch, apply one change and
// save once; business logic lives in the internal packages.
package cli
