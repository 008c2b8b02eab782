// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//
// The package also maps stored configuration onto the domain config
// structs, overlaying TOML keys on the compiled-in defaults.
package file
