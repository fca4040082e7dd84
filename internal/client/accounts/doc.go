// Package accounts is the local multi-account session cache of the
// FoodFinder client.
//
// A Store keeps one Record per email address in a single serialized
// collection inside a storage.Storage. A Reconciler turns authentication
// outcomes (password login, token refresh) into merges into that collection.
// A Resolver makes a saved account the active session by trying, in order,
// a password sign-in with the cached password and a refresh with the cached
// refresh token; when both fail it signs out and asks the caller to run an
// interactive login.
//
// The cache is best effort. Read failures look like an empty collection,
// write failures are reported to the caller to log, and nothing in the switch
// chain deletes a record: only Remove and Clear do.
package accounts
