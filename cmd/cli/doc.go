// Package cli wires the repomirror root command with configuration loading,
// structured logging, and the migration subcommands.
package cli
