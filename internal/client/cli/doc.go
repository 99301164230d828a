// Package cli provides the interactive ledgerdrive command-line client.
//
// It wires configuration, the local database, the ledger gateway client, the
// storage backend and the upload saga, then runs a REPL. A background
// watcher pings the gateway and flips the prompt between online and offline.
//
// Commands:
//   - login <owner> / logout
//   - upload <path> [name]
//   - list, pending, profile
//   - url <name>, public <name>, private <name>
//   - clear, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
