// Command shortfactory is the CLI entrypoint for the content-production
// pipeline: it wires config, storage, the resilient call layer, every
// stage adapter, and the orchestrator together, then runs one of the
// commands below. The command tree structure (a persistent config flag
// lazily loaded once, one file per command group) follows
// five82-spindle's cmd/spindle package.
package main
