// Package ledger is the client side of the authoritative file ledger.
//
// # Overview
//
// The package provides:
//  1. The Backend contract: account existence checks, the five mutating calls
//     used by the upload saga (EnsureConfig, EnsureProfile, CreateFileRecord,
//     RegisterStorage, FinalizeFile), the privacy toggle and the read path
//     (ListFilesByOwner, GetProfile, GetConfig).
//  2. Deterministic address derivation (Program): the same logical entity
//     always maps to the same ledger slot, which is what makes duplicate
//     submission detection meaningful.
//  3. A structured error taxonomy (*Error with a Kind sentinel). Callers
//     classify failures with errors.Is only; nothing inspects messages.
//  4. A gRPC gateway adapter (GRPCClient) and the matching service
//     registration (RegisterGatewayServer) used by the development daemon.
//
// # Error Handling
//
// ErrDuplicateSubmission and ErrAlreadyInitialized are benign: the operation
// was applied earlier and idempotent callers proceed. ErrTransport,
// ErrPreconditionFailed, ErrValidation and ErrUnauthorized are fatal for the
// step that produced them. See IsBenign.
package ledger
