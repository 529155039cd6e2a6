package sentinel

import "errors"

// Sentinel errors for persistence and collaborator facts. Stores and adapters
// return these (optionally wrapped) and services translate them into coded
// domain errors:
//   - ErrNotFound: row does not exist
//   - ErrStaleVersion: optimistic concurrency check failed (someone saved first)
//   - ErrImmutable: row is referenced by a case and must not be rewritten
//   - ErrAlreadyExists: unique key already taken
//   - ErrUnavailable: collaborator timed out or refused the call
var (
	ErrNotFound      = errors.New("not found")
	ErrStaleVersion  = errors.New("stale version")
	ErrImmutable     = errors.New("immutable record")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("unavailable")
)
