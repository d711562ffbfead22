package ports

import "errors"

// Storage-level sentinels. Repositories signal presence/absence explicitly
// instead of returning empty values; services translate these into the
// domain error taxonomy. Any other repository error is an opaque
// infrastructure fault and propagates unchanged.
var (
	ErrNoRecord     = errors.New("no matching record")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConflict signals a conditional write that matched nothing because
	// the row changed between read and write.
	ErrConflict = errors.New("conflicting concurrent write")
)
