// Package wiki implements the client components of the wiki: the
// workspace tree, the access gate, the document editor, the attachment
// manager and the login session.
//
// Components share a *core.Store and reach the backend only through a
// core.SyncClient. Every list and resolution call takes a generation
// ticket first, so a response that arrives after a newer request of the
// same kind is dropped instead of overwriting fresher state.
package wiki
