// Package session holds the per-session state of the annotation workflow:
// an append-only store of annotated transcription entries, the current
// (unsaved) transcript slot, and a registry that creates, resolves, and
// expires sessions.
//
// Nothing here survives a process restart. Session scope is the design,
// matching the tool this service fronts.
package session
