// Package manifest reads and writes gpm's registry files.
//
// Registry files are TOML. Each one is validated against an embedded JSON
// schema before it is decoded, so a hand-edited file with a missing field or
// a wrongly typed value is reported with the path of every offending entry
// instead of failing later in the engine. Saves are atomic: the new content
// goes to a temporary file in the same directory, which is then renamed over
// the old file.
package manifest
