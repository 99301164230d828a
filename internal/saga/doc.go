// Package saga drives one file upload from local bytes to a finalized ledger
// record.
//
// An upload is a fixed sequence of steps:
//
//	hash → ensure-config → ensure-profile → create-record → store →
//	register-storage → finalize → done
//
// Each ledger step is idempotent from the coordinator's point of view: a
// response saying the operation was already applied (a duplicate submission,
// or an already initialized account) counts as success and the saga moves
// on. Any other error aborts the saga; nothing is rolled back on the ledger,
// and re-running the saga for the same file resumes where the ledger left
// off.
//
// Progress is reported as a stream of Events on a channel. Every step owns a
// fixed slice of the [0, 1] range; the store step additionally forwards the
// uploader's own progress. Progress never decreases and reaches 1 only on
// the final event of a successful run.
//
// While a saga runs, the local reconciliation store holds an optimistic row
// for it. The row is marked deleted when the saga finishes, either way, so a
// failed upload never leaves a stuck row behind.
package saga
