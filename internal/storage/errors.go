package storage

import "errors"

var (
	// ErrNotFound keeps storage-specific lookups consistent across in-memory
	// and PostgreSQL implementations.
	ErrNotFound = errors.New("record not found")

	// ErrAuditUnavailable marks an audit sink that cannot accept appends at
	// all (for example the table does not exist). Verdict writing treats it
	// the same as any other audit failure: log and move on.
	ErrAuditUnavailable = errors.New("audit store unavailable")
)
