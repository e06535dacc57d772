// Package scaffold drives the generate, deploy and proto-compile workflows.
// Each workflow is an ordered list of named steps; the orchestrator runs
// them in sequence, narrates progress through a Reporter and stops at the
// first step whose failure is not tolerated. Nothing already written is
// rolled back.
package scaffold
