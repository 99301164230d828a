// Package client contains the client-side plumbing of ledgerdrive.
//
// # Overview
//
// The package provides:
//  1. The Client contract: a ledger.Backend reached over a connection that
//     must be closed.
//  2. GRPCClient, the gRPC implementation talking to the ledger gateway. It
//     attaches a session token to every call via an interceptor, applies a
//     per-attempt timeout, resubmits calls that failed with a transient
//     status, and maps gRPC status codes onto the ledger error kinds.
//  3. Local persistence bootstrap (OpenDatabase, InitDatabase,
//     RunMigrations): an SQLite database with embedded goose migrations
//     backing the metadata and uploads repositories.
//
// # Error Handling
//
// Every error returned by GRPCClient is a *ledger.Error. Callers match the
// kind with errors.Is against the ledger sentinels, e.g.
// ledger.ErrDuplicateSubmission or ledger.ErrTransport.
//
// # Resubmission
//
// A mutation whose response was lost may already have been applied. Its
// resubmission then fails with AlreadyExists, which GRPCClient reports as a
// duplicate submission; the upload saga treats that as success.
package client
