package ioreader

import (
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the cache size used when a parser does not request a
// larger one. Block-interleaved formats (DSP, HALPST) typically request a
// cache at least as large as one interleave block.
const DefaultCacheSize = 0x400

// siblingCacheSize bounds how many OpenSibling results a Reader keeps alive.
// Multi-subsong companion-file formats (WHED+WMUS, SGH+SGB) reopen the same
// sibling once per subsong; caching avoids repeatedly re-establishing the
// host handle.
const siblingCacheSize = 8

// ErrTruncated is returned by ReadChunk when fewer bytes were available
// than requested.
var ErrTruncated = errors.New("ioreader: truncated read")

// Reader is a buffered, random-access view over an Io. It owns exactly one
// contiguous cache; parsers that need independent cursors (e.g. one
// per channel in a flat-interleaved layout) each get their own Reader
// sharing the same Io, or their own Io entirely, depending on access
// pattern (the parser decides).
type Reader struct {
	io       Io
	size     int64
	cache    []byte
	base     int64
	valid    int
	siblings *lru.Cache[string, Io]
}

// New wraps io in a Reader with the default cache size.
func New(io Io) (*Reader, error) {
	return NewSize(io, DefaultCacheSize)
}

// NewSize wraps io in a Reader with an explicit cache size.
func NewSize(io Io, cacheSize int) (*Reader, error) {
	size, err := io.Size()
	if err != nil {
		return nil, fmt.Errorf("ioreader: stat: %w", err)
	}

	siblings, err := lru.New[string, Io](siblingCacheSize)
	if err != nil {
		return nil, fmt.Errorf("ioreader: sibling cache: %w", err)
	}

	return &Reader{
		io:       io,
		size:     size,
		cache:    make([]byte, cacheSize),
		base:     -1,
		siblings: siblings,
	}, nil
}

// Size returns the total size of the underlying source.
func (r *Reader) Size() int64 { return r.size }

// Name returns the underlying Io's diagnostic name.
func (r *Reader) Name() string { return r.io.Name() }

// Close closes every sibling Reader opened through this one and the
// underlying Io.
func (r *Reader) Close() error {
	for _, key := range r.siblings.Keys() {
		if sib, ok := r.siblings.Peek(key); ok {
			_ = sib.Close()
		}
	}

	return r.io.Close()
}

// OpenSibling opens (or returns a cached) companion Reader sharing this
// Reader's cache size.
func (r *Reader) OpenSibling(name string) (*Reader, error) {
	if cached, ok := r.siblings.Get(name); ok {
		return NewSize(cached, len(r.cache))
	}

	sib, err := r.io.OpenSibling(name)
	if err != nil {
		return nil, err
	}

	r.siblings.Add(name, sib)

	return NewSize(sib, len(r.cache))
}

// Read fills dst from offset, returning the number of bytes satisfied. A
// read that runs past Size() is not an error: the returned count is less
// than len(dst), and the caller must not assume the unfilled tail of dst
// is zeroed.
func (r *Reader) Read(dst []byte, offset int64) (int, error) {
	if offset >= r.size || len(dst) == 0 {
		return 0, nil
	}

	want := len(dst)
	got := 0

	for got < want {
		curOff := offset + int64(got)
		if curOff >= r.size {
			break
		}

		// Fast path: copy whatever part of the remaining request the
		// cache already holds.
		if r.base >= 0 && curOff >= r.base && curOff < r.base+int64(r.valid) {
			avail := int(r.base+int64(r.valid) - curOff)
			n := min(want-got, avail)
			copy(dst[got:got+n], r.cache[curOff-r.base:curOff-r.base+int64(n)])
			got += n

			continue
		}

		if err := r.refill(curOff); err != nil {
			return got, err
		}

		if r.valid == 0 {
			break
		}
	}

	return got, nil
}

// refill loads the cache starting at offset.
func (r *Reader) refill(offset int64) error {
	n := len(r.cache)
	if remaining := r.size - offset; remaining < int64(n) {
		n = int(remaining)
	}

	if n <= 0 {
		r.valid = 0

		return nil
	}

	read, err := r.io.ReadAt(r.cache[:n], offset)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	r.base = offset
	r.valid = read

	return nil
}

// ErrIOFailure wraps a hard error from the host Io backend.
var ErrIOFailure = errors.New("ioreader: backend read failed")

// ReadChunk reads exactly len(dst) bytes or returns ErrTruncated.
func (r *Reader) ReadChunk(dst []byte, offset int64) error {
	n, err := r.Read(dst, offset)
	if err != nil {
		return err
	}

	if n != len(dst) {
		return fmt.Errorf("%w: wanted %d got %d at offset %d", ErrTruncated, len(dst), n, offset)
	}

	return nil
}

func (r *Reader) readN(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.ReadChunk(buf, offset); err != nil {
		return nil, err
	}

	return buf, nil
}

// U8 reads an unsigned 8-bit value.
func (r *Reader) U8(offset int64) (uint8, error) {
	b, err := r.readN(offset, 1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// I8 reads a signed 8-bit value.
func (r *Reader) I8(offset int64) (int8, error) {
	v, err := r.U8(offset)

	return int8(v), err //nolint:gosec // intentional reinterpretation
}

// U16LE reads a little-endian unsigned 16-bit value.
func (r *Reader) U16LE(offset int64) (uint16, error) {
	b, err := r.readN(offset, 2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// U16BE reads a big-endian unsigned 16-bit value.
func (r *Reader) U16BE(offset int64) (uint16, error) {
	b, err := r.readN(offset, 2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

// I16LE reads a little-endian signed 16-bit value.
func (r *Reader) I16LE(offset int64) (int16, error) {
	v, err := r.U16LE(offset)

	return int16(v), err //nolint:gosec // intentional reinterpretation
}

// I16BE reads a big-endian signed 16-bit value.
func (r *Reader) I16BE(offset int64) (int16, error) {
	v, err := r.U16BE(offset)

	return int16(v), err //nolint:gosec // intentional reinterpretation
}

// U32LE reads a little-endian unsigned 32-bit value.
func (r *Reader) U32LE(offset int64) (uint32, error) {
	b, err := r.readN(offset, 4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// U32BE reads a big-endian unsigned 32-bit value.
func (r *Reader) U32BE(offset int64) (uint32, error) {
	b, err := r.readN(offset, 4)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(b), nil
}

// I32LE reads a little-endian signed 32-bit value.
func (r *Reader) I32LE(offset int64) (int32, error) {
	v, err := r.U32LE(offset)

	return int32(v), err //nolint:gosec // intentional reinterpretation
}

// I32BE reads a big-endian signed 32-bit value.
func (r *Reader) I32BE(offset int64) (int32, error) {
	v, err := r.U32BE(offset)

	return int32(v), err //nolint:gosec // intentional reinterpretation
}

// U64LE reads a little-endian unsigned 64-bit value.
func (r *Reader) U64LE(offset int64) (uint64, error) {
	b, err := r.readN(offset, 8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// U64BE reads a big-endian unsigned 64-bit value.
func (r *Reader) U64BE(offset int64) (uint64, error) {
	b, err := r.readN(offset, 8)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(b), nil
}

// I64LE reads a little-endian signed 64-bit value.
func (r *Reader) I64LE(offset int64) (int64, error) {
	v, err := r.U64LE(offset)

	return int64(v), err //nolint:gosec // intentional reinterpretation
}

// I64BE reads a big-endian signed 64-bit value.
func (r *Reader) I64BE(offset int64) (int64, error) {
	v, err := r.U64BE(offset)

	return int64(v), err //nolint:gosec // intentional reinterpretation
}

// TagBE reads a 4-byte ASCII tag as a big-endian uint32, suitable for
// literal comparison against a fourCC constant (e.g. 0x52494646 == "RIFF").
func (r *Reader) TagBE(offset int64) (uint32, error) {
	return r.U32BE(offset)
}
