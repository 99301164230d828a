// Package uploads is the client's local reconciliation store: a keyed log of
// the uploads this client has started, with their last known status.
//
// Rows are appended when an upload starts and updated as it progresses. A row
// whose status is deleted is inert but stays queryable until Clear, so a
// caller can still observe the final transition. The store never decides
// which files exist; that is the ledger's job. It only remembers uploads the
// ledger may not know about yet.
//
// Two implementations are provided: SQLiteRepository, which survives client
// restarts, and MemoryRepository, which lives as long as the process.
package uploads
