// Package turniti provides a document-processing relay for Go: per-user
// FIFO queues, a fairness-aware admission scheduler with a global
// concurrency ceiling, quota metering with debit-on-success semantics,
// and delivery of processed artifacts back to the submitting user.
//
// Turniti is designed as a library, not a service. Import it, configure
// a store and a processor, and hand it documents as they arrive.
//
// # Quick Start
//
//	relay, err := turniti.New(
//	    turniti.WithStore(memory.New()),
//	    turniti.WithProcessor(remote.New(baseURL, workDir)),
//	)
//	relay.Start(ctx)
//	pos, err := relay.Submit(ctx, userID, "thesis.pdf", tmpPath, size)
//
// # Architecture
//
// Each subsystem (quota, outcome log, transactions) defines its own
// store interface; a single backend (memory, postgres, redis)
// implements all of them. Admission is serialized per user: at most
// one job per user executes at a time, and a round-robin rotation
// keeps a heavy submitter from starving everyone else.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based,
// compile-time safe identifiers.
package turniti
