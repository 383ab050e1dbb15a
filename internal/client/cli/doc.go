// Package cli provides the interactive AdhereTrack session client.
//
// It wires configuration, the local token store, the identity backend
// client, the session manager and the access gate, then runs a REPL whose
// commands depend on the reachable screen group:
//
//   - placeholder: nothing but help and exit while the session is loading
//   - public: register, login
//   - protected: whoami, logout
//
// The REPL is started via App.Run(ctx), which restores the persisted
// session first and blocks until the user exits.
package cli
