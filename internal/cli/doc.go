// Package cli provides the interactive Lockbox command-line client.
//
// It wires configuration, the encrypted local store and the vault services
// into an interactive REPL. Typical flow: register or log in with a profile
// name and password, then store and retrieve encrypted objects.
//
// Key features:
//   - Register / Login / Logout (password-derived key, nothing stored)
//   - Store local files and typed notes
//   - List / Show / Rename / Delete objects
//   - Wipe a whole vault
//   - Export / Import JSON backups
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
