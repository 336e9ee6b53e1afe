// Package config handles loading and analysis of the matrix configuration.
//
// The primary configuration format is an INI file with named sections
// (matrix.ini), parsed with gopkg.in/ini.v1 in python-multiline mode so
// command lists and setenv blocks can span lines. The same schema is also
// accepted as TOML (matrix.toml). An optional matrix.local.json overlay in
// JSONC (JSON with Comments) lets developers override a few knobs without
// touching the committed file; github.com/tidwall/jsonc strips the comments
// before parsing with the standard encoding/json library.
//
// Key responsibilities:
//   - Discover and parse the configuration file (INI or TOML)
//   - Merge the base [env] section into each [env:NAME] definition
//   - Apply the local JSONC overlay
//   - Expand {placeholder} substitutions in setenv values and commands
//   - Validate invariants (threshold range, env name grammar, envlist)
package config
