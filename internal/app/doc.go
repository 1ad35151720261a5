// Package app wires the command line to the acquisition pipeline.
// It builds the Qobuz client, the orchestrator and its collaborators,
// the delivery backend and the run history, then executes the requested command.
package app
