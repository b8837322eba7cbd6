package spore

import "errors"

// Sentinel errors returned by Open/OpenSubsong and by Stream methods.
// Wrap with fmt.Errorf("%w: ...") for context; compare with errors.Is.
var (
	// ErrUnrecognized is returned when the dispatcher exhausted every parser.
	ErrUnrecognized = errors.New("spore: unrecognized format")
	// ErrTruncated is returned when a chunk ended before its declared size.
	ErrTruncated = errors.New("spore: truncated data")
	// ErrInvalid is returned when a structural invariant is violated.
	ErrInvalid = errors.New("spore: invalid stream")
	// ErrUnsupported is returned when a container is recognised but its codec
	// or layout is not implemented in this build.
	ErrUnsupported = errors.New("spore: unsupported codec or layout")
	// ErrIO is returned when the backing Io reports a hard error (not EOF).
	ErrIO = errors.New("spore: io error")
	// ErrKeyRequired is returned for an encrypted ADX stream whose key could
	// not be auto-detected and was not supplied by the caller.
	ErrKeyRequired = errors.New("spore: encryption key required")
)

// errNotThisFormat is returned by parsers on signature mismatch. It never
// escapes the package: the dispatcher translates it into "try the next
// parser" and never surfaces it to callers.
var errNotThisFormat = errors.New("spore: not this format")
