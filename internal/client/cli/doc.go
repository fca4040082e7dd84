// Package cli provides the interactive FoodFinder command-line client.
//
// It wires configuration, local account storage, the auth backend client and
// the session service into a REPL. Typical flow: sign in once per account, then
// move between saved accounts with "switch <email>" without typing passwords
// again whenever a stored password or refresh token still works.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
