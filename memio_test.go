package spore

import (
	"encoding/binary"
	"testing"

	"github.com/mycophonic/spore/ioreader"
)

// byteBuilder assembles handcrafted container bytes at arbitrary offsets,
// growing to fit as needed, for tests that construct a format's fields out
// of order relative to their byte offset.
type byteBuilder struct {
	buf []byte
}

func (b *byteBuilder) grow(n int) {
	if len(b.buf) < n {
		b.buf = append(b.buf, make([]byte, n-len(b.buf))...)
	}
}

func (b *byteBuilder) putBytes(off int64, data []byte) {
	b.grow(int(off) + len(data))
	copy(b.buf[off:], data)
}

func (b *byteBuilder) tag(off int64, s string) { b.putBytes(off, []byte(s)) }

func (b *byteBuilder) u8(off int64, v uint8) { b.putBytes(off, []byte{v}) }

func (b *byteBuilder) u16BE(off int64, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.putBytes(off, tmp[:])
}

func (b *byteBuilder) u32BE(off int64, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.putBytes(off, tmp[:])
}

func (b *byteBuilder) u32LE(off int64, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.putBytes(off, tmp[:])
}

func (b *byteBuilder) i16BE(off int64, v int16) { b.u16BE(off, uint16(v)) } //nolint:gosec // intentional reinterpretation

func (b *byteBuilder) u16LE(off int64, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.putBytes(off, tmp[:])
}

func (b *byteBuilder) i16LE(off int64, v int16) { b.u16LE(off, uint16(v)) } //nolint:gosec // intentional reinterpretation

// memIo is a minimal in-memory ioreader.Io backed by a byte slice, used by
// every parser/codec test in this package to hand-build container bytes
// without touching the filesystem.
type memIo struct {
	name string
	data []byte
}

func newMemIo(name string, data []byte) *memIo {
	return &memIo{name: name, data: data}
}

func (m *memIo) ReadAt(dst []byte, offset int64) (int, error) {
	if offset >= int64(len(m.data)) {
		return 0, nil
	}

	n := copy(dst, m.data[offset:])

	return n, nil
}

func (m *memIo) Size() (int64, error) { return int64(len(m.data)), nil }

func (m *memIo) Name() string { return m.name }

func (m *memIo) OpenSibling(string) (ioreader.Io, error) {
	return nil, ioreader.ErrNoSibling
}

func (m *memIo) Close() error { return nil }

func newMemReader(t *testing.T, name string, data []byte) *ioreader.Reader {
	t.Helper()

	r, err := ioreader.New(newMemIo(name, data))
	if err != nil {
		t.Fatalf("ioreader.New: %v", err)
	}

	return r
}
