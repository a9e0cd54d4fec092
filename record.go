package dsstore

import (
	"strings"
)

// Record is the user-visible unit of metadata: a (filename, typeCode, value)
// triple. "." is the sentinel filename for the directory itself.
type Record struct {
	Filename string
	TypeCode FourCC
	Value    Value
}

// RecordID is the (filename, typeCode) identity records are deduplicated on.
type RecordID struct {
	Filename string
	TypeCode FourCC
}

// ID returns r's deduplication identity.
func (r Record) ID() RecordID {
	return RecordID{Filename: r.Filename, TypeCode: r.TypeCode}
}

// validateFilename checks the constraints from §3: no U+0000, and a UTF-16
// length that fits in a u32 code-unit count.
func validateFilename(name string) error {
	if strings.ContainsRune(name, 0) {
		return corruptf("filename %q contains a NUL character", name)
	}
	_, units, err := encodeUTF16BE(name)
	if err != nil {
		return err
	}
	if uint64(units) > 0xffffffff {
		return corruptf("filename %q is too long to encode", name)
	}
	return nil
}

// encodedSize returns the exact number of bytes r serializes to: the
// length-prefixed UTF-16BE filename, the 4-byte type code, the 4-byte
// on-disk data type tag, and the value's payload.
func (r Record) encodedSize() (int, error) {
	if err := validateFilename(r.Filename); err != nil {
		return 0, err
	}
	_, units, err := encodeUTF16BE(r.Filename)
	if err != nil {
		return 0, err
	}
	return 4 + int(units)*2 + 4 + 4 + r.Value.payloadSize(), nil
}

// encodeRecord serializes r to w in on-disk order: filename, type code,
// data type tag, payload.
func encodeRecord(w *writer, r Record) error {
	if err := validateFilename(r.Filename); err != nil {
		return err
	}
	if err := encodeFilename(w, r.Filename); err != nil {
		return err
	}
	w.WriteFourCC(r.TypeCode)
	w.WriteFourCC(r.Value.typeCode())
	return r.Value.encodePayload(w)
}

// encodeFilename writes the u32 character-count prefix followed by the
// UTF-16BE bytes.
func encodeFilename(w *writer, name string) error {
	b, units, err := encodeUTF16BE(name)
	if err != nil {
		return err
	}
	w.WriteU32(units)
	w.WriteBytes(b)
	return nil
}

// decodeRecord reads one record from r: filename, type code, data type tag,
// then the value payload for that data type.
func decodeRecord(r *reader) (Record, error) {
	n, err := r.U32()
	if err != nil {
		return Record{}, err
	}
	name, err := r.UTF16BE(n)
	if err != nil {
		return Record{}, err
	}
	typeCode, err := r.FourCC()
	if err != nil {
		return Record{}, err
	}
	dataType, err := r.FourCC()
	if err != nil {
		return Record{}, err
	}
	val, err := decodeValue(r, dataType)
	if err != nil {
		return Record{}, err
	}
	return Record{Filename: name, TypeCode: typeCode, Value: val}, nil
}

// compareRecords implements the total order from §3: filenames compare
// case-insensitively and diacritic-insensitively (see compareFilenames in
// compare.go), then type codes compare as raw ascending uint32s.
func compareRecords(a, b Record) int {
	if c := compareFilenames(a.Filename, b.Filename); c != 0 {
		return c
	}
	switch {
	case a.TypeCode < b.TypeCode:
		return -1
	case a.TypeCode > b.TypeCode:
		return 1
	default:
		return 0
	}
}
