// Package home resolves the gpm home directory layout (~/.gpm with its
// repositories/ and scripts/ subdirectories and the registry files) into an
// explicit Context value, and materializes that layout on `gpm init`.
package home
