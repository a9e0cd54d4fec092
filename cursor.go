package dsstore

import (
	"encoding/binary"
	"fmt"
)

// reader is a bounds-checked big-endian cursor over an immutable byte slice.
// It never reads past the end of buf; every accessor returns an error instead.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// newReaderAt returns a reader positioned at off within buf, bounds-checked
// against buf's length (not against any logical "window" end).
func newReaderAt(buf []byte, off int) (*reader, error) {
	if off < 0 || off > len(buf) {
		return nil, corruptf("cursor offset %d out of range (buffer is %d bytes)", off, len(buf))
	}
	return &reader{buf: buf, pos: off}, nil
}

func (r *reader) Pos() int { return r.pos }

// Seek moves the cursor to an absolute offset, bounds-checked.
func (r *reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return corruptf("seek to %d out of range (buffer is %d bytes)", off, len(r.buf))
	}
	r.pos = off
	return nil
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) need(n int) error {
	if n < 0 || r.remaining() < n {
		return corruptf("unexpected end of data: need %d bytes at offset %d, have %d", n, r.pos, r.remaining())
	}
	return nil
}

func (r *reader) take(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) FourCC() (FourCC, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return fourCCFromUint32(v), nil
}

// Bytes reads n raw bytes and returns a copy (never an alias into buf, so callers
// may retain the result past the cursor's lifetime).
func (r *reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// UTF16BE reads a UTF-16BE string of exactly charCount 16-bit code units
// (charCount*2 bytes), failing on overflow or decode errors.
func (r *reader) UTF16BE(charCount uint32) (string, error) {
	if charCount > (1<<31)/2 {
		return "", fmt.Errorf("%w: character count %d overflows byte length", ErrInvalidUTF16String, charCount)
	}
	n := int(charCount) * 2
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	return decodeUTF16BE(b)
}

// writer is an append-only big-endian byte buffer with a padTo primitive for
// emitting zero-filled regions up to a target absolute offset.
type writer struct {
	buf []byte
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) Len() int { return len(w.buf) }

func (w *writer) Bytes() []byte { return w.buf }

func (w *writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) WriteU16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) WriteU32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) WriteU64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) WriteFourCC(f FourCC) {
	w.WriteU32(f.Uint32())
}

func (w *writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteUTF16BE writes s as UTF-16BE and returns the number of 16-bit code
// units written, which callers use as the on-disk length prefix.
func (w *writer) WriteUTF16BE(s string) (uint32, error) {
	b, units, err := encodeUTF16BE(s)
	if err != nil {
		return 0, err
	}
	w.WriteBytes(b)
	return units, nil
}

// PadTo zero-fills up to the target absolute offset. It fails if the writer
// has already advanced past target.
func (w *writer) PadTo(target int) error {
	if target < len(w.buf) {
		return fmt.Errorf("dsstore: padTo(%d) but cursor is already at %d", target, len(w.buf))
	}
	w.buf = append(w.buf, make([]byte, target-len(w.buf))...)
	return nil
}
