// Package client contains the client-side building blocks that talk to the
// identity backend and bootstrap local persistence.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract of the identity backend (see the Client
//     interface): Login, Register and Validate.
//  2. An HTTP/JSON implementation (see HTTPClient). Success is any 2xx
//     status; failure bodies are never interpreted.
//  3. AuthorizedTransport and ProtectedAPI for application calls that carry
//     the session token and report a rejected token back to the session.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite database and applies the embedded goose migrations.
//
// # Error Handling
//
// Failures are reported with sentinel errors matched via errors.Is:
// ErrInvalidCredentials, ErrRegistrationFailed, ErrTokenInvalid and
// ErrNetwork. Context deadlines and cancellations are ErrNetwork.
//
// No retries are performed here; retry policy belongs to the caller.
package client
