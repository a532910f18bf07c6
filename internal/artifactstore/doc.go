// Package artifactstore implements the TOCTOU-safe on-disk layout every
// stage adapter writes its output through: artifacts live under
// <root>/<kind>/<item_id>/<timestamp>-<hash-prefix>.<ext>, writes land via
// temp-file-then-rename, and every per-item operation is serialized behind
// an advisory file lock so a directory scan can never observe a
// half-written artifact.
//
// The rename discipline is grounded on this repository's own
// fileutil.CopyFileVerified hashing/verification approach, generalized to
// atomic placement. The per-item lock reuses the same gofrs/flock
// dependency this repository already carries for its single-instance
// daemon lock.
package artifactstore
