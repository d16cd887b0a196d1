// Package config loads bookshelf server settings.
//
// Values are merged from several sources. Later sources win:
//
//  1. built-in defaults
//  2. a YAML file (--config, or bookshelf.yaml / .bookshelf.yaml in the
//     working directory)
//  3. a .env file, which never overrides a variable already set in the
//     process environment
//  4. environment variables (PORT, BOOKSHELF_*)
//  5. command-line flags, applied by the CLI through Set
//
// Config.Sources records which source supplied each value.
package config
