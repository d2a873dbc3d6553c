package fieldscope

import "errors"

// ErrSessionClosed is returned by Ingest after Finalize has been called.
// It indicates programmer error, not a data problem.
var ErrSessionClosed = errors.New("fieldscope: session closed")

// ErrMalformedRecord is returned when a single record cannot be walked:
// the root is not an object, the tree exceeds the depth ceiling, or a
// self-referential container was detected. The session stays usable.
var ErrMalformedRecord = errors.New("fieldscope: malformed record")
