// Package ioreader provides the random-access, buffered byte source every
// container parser and codec kernel reads through. It is the one layer in
// spore that talks to a host I/O backend; everything above it only ever
// sees offsets and byte slices.
package ioreader

import (
	"errors"
	"io"
	"os"
)

// Io is the capability a host provides to spore. Unlike a function-pointer
// table on a heap-allocated struct, it is an ordinary interface: dispatch
// happens once per Read call, not per byte.
type Io interface {
	// ReadAt reads into dst starting at offset, returning the number of
	// bytes actually read. A read that runs past the end of the source is
	// not an error; it returns fewer bytes than len(dst).
	ReadAt(dst []byte, offset int64) (int, error)
	// Size returns the total size of the source in bytes.
	Size() (int64, error)
	// Name returns a diagnostic name (e.g. a file path). It is never used
	// for format dispatch, only for logging and for sibling-path hints.
	Name() string
	// OpenSibling opens a companion file addressed relative to this one
	// (e.g. the .WHED beside a .WMUS). The host decides how "relative"
	// resolves; spore never touches a filesystem directly.
	OpenSibling(name string) (Io, error)
	// Close releases the underlying host handle. Guaranteed to be called
	// exactly once per Io obtained from Open/OpenSibling.
	Close() error
}

// ErrNoSibling is returned by an Io.OpenSibling implementation (including
// OSIo's) when the requested companion file does not exist.
var ErrNoSibling = errors.New("ioreader: sibling not found")

// OSIo is an Io backend over the local filesystem, used by the CLI and by
// tests. Host applications with other storage (archives, network) provide
// their own Io implementation; that integration is outside the core.
type OSIo struct {
	file *os.File
	path string
}

// OpenOSIo opens a local file as an Io.
func OpenOSIo(path string) (*OSIo, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-supplied by design
	if err != nil {
		return nil, err
	}

	return &OSIo{file: f, path: path}, nil
}

func (o *OSIo) ReadAt(dst []byte, offset int64) (int, error) {
	n, err := o.file.ReadAt(dst, offset)
	if errors.Is(err, io.EOF) {
		return n, nil
	}

	return n, err
}

func (o *OSIo) Size() (int64, error) {
	fi, err := o.file.Stat()
	if err != nil {
		return 0, err
	}

	return fi.Size(), nil
}

func (o *OSIo) Name() string { return o.path }

func (o *OSIo) OpenSibling(name string) (Io, error) {
	dir := dirname(o.path)
	siblingPath := dir + name

	if _, err := os.Stat(siblingPath); err != nil {
		return nil, ErrNoSibling
	}

	return OpenOSIo(siblingPath)
}

func (o *OSIo) Close() error {
	return o.file.Close()
}

// dirname returns the directory portion of path, including a trailing
// separator, or "" if path has no directory component.
func dirname(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i+1]
		}
	}

	return ""
}
