// Package cli provides the command-line interface for bookshelf.
//
// Commands:
//   - serve: run the HTTP API server in the foreground
//   - init: create an empty data file
//   - validate: check the configuration and the data file
//   - list: list books from the data file with filters and pagination
//   - config: show the effective configuration and where each value came from
//   - version: show build information
//
// Every command reads configuration the same way; see package config. Flags
// override every other source. --json switches command output to JSON.
//
// Usage:
//
//	bookshelf serve --port 8080 --data ./books.json
//	bookshelf init --force
//	bookshelf list --where language=English --limit 5
//	bookshelf config --yaml > bookshelf.yaml
package cli
