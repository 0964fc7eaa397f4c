// Package job defines the Job entity, its lifecycle states, the
// append-only Outcome audit record, and the supported-format check.
//
// A Job is created when a submission arrives and is discarded after a
// terminal outcome is recorded. Ownership is exclusive at every point:
// the per-user queue owns a queued job, the runner owns an admitted one.
package job
