package storage

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrRevisionConflict is returned when a conditional upsert loses the race:
// the stored revision no longer matches what the caller read.
var ErrRevisionConflict = errors.New("storage: revision conflict")
