// Package cli defines the Cobra command tree for the svcforge CLI. Each file
// in this package registers one top-level command with the root command.
// Commands resolve the project and its settings, then delegate to the
// scaffold, templates and doctor packages; they only handle flags and output.
package cli
