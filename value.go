package dsstore

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"howett.net/plist"
)

// dutcEpochOffsetSeconds is the number of seconds between the Mac "UTC" epoch
// (1904-01-01T00:00:00Z) and the Unix epoch.
const dutcEpochOffsetSeconds = 2082844800

// dutcUnitsPerSecond is the tick rate of a dutc value: 1/65536 of a second.
const dutcUnitsPerSecond = 65536

// Value is the tagged union over the on-disk value types a Record can carry
// (§3, §4.3). Each concrete type below implements exactly one on-disk type
// code; Blob is upgraded to PropertyList on read when its bytes sniff as a
// property list, and PropertyList is downgraded back to Blob on write.
type Value interface {
	// typeCode returns the on-disk 4-byte type tag ("bool", "long", ...).
	typeCode() FourCC
	// payloadSize returns the exact number of payload bytes this value
	// serializes to, not counting the type tag itself.
	payloadSize() int
	// encodePayload appends the payload bytes (not the type tag) to w.
	encodePayload(w *writer) error
}

var (
	typeBool = NewFourCC("bool")
	typeLong = NewFourCC("long")
	typeShor = NewFourCC("shor")
	typeComp = NewFourCC("comp")
	typeDutc = NewFourCC("dutc")
	typeType = NewFourCC("type")
	typeUstr = NewFourCC("ustr")
	typeBlob = NewFourCC("blob")
	typeBook = NewFourCC("book")
	typeNull = FourCC(0)
)

// BoolValue is the on-disk "bool" type: a single byte, 0 or 1.
type BoolValue bool

func (v BoolValue) typeCode() FourCC  { return typeBool }
func (v BoolValue) payloadSize() int  { return 1 }
func (v BoolValue) encodePayload(w *writer) error {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
	return nil
}

// LongValue is the on-disk "long" type: an unsigned 32-bit integer.
type LongValue uint32

func (v LongValue) typeCode() FourCC { return typeLong }
func (v LongValue) payloadSize() int { return 4 }
func (v LongValue) encodePayload(w *writer) error {
	w.WriteU32(uint32(v))
	return nil
}

// ShortValue is the on-disk "shor" type: a 16-bit value stored in a 32-bit
// slot. The upper 16 bits must be zero; NewShortValue enforces this.
type ShortValue uint32

// NewShortValue validates that v fits in 16 bits before returning a ShortValue.
func NewShortValue(v uint32) (ShortValue, error) {
	if v > 0xffff {
		return 0, fmt.Errorf("dsstore: shor value 0x%x does not fit in 16 bits", v)
	}
	return ShortValue(v), nil
}

func (v ShortValue) typeCode() FourCC { return typeShor }
func (v ShortValue) payloadSize() int { return 4 }
func (v ShortValue) encodePayload(w *writer) error {
	if uint32(v) > 0xffff {
		return fmt.Errorf("dsstore: shor value 0x%x does not fit in 16 bits", uint32(v))
	}
	w.WriteU32(uint32(v))
	return nil
}

// CompValue is the on-disk "comp" type: an unsigned 64-bit integer.
type CompValue uint64

func (v CompValue) typeCode() FourCC { return typeComp }
func (v CompValue) payloadSize() int { return 8 }
func (v CompValue) encodePayload(w *writer) error {
	w.WriteU64(uint64(v))
	return nil
}

// DUTCValue is the on-disk "dutc" type: a 64-bit timestamp in units of
// 1/65536 second since 1904-01-01T00:00:00Z.
type DUTCValue uint64

// DUTCFromTime converts a wall-clock time to a DUTCValue, rounding toward
// zero and rejecting values that would not fit in a uint64.
func DUTCFromTime(t time.Time) (DUTCValue, error) {
	secs := t.Unix() + dutcEpochOffsetSeconds
	nsec := int64(t.Nanosecond())
	// ticks = secs*65536 + nsec*65536/1e9, truncated toward zero.
	if secs < 0 || uint64(secs) > math.MaxUint64/dutcUnitsPerSecond {
		return 0, fmt.Errorf("dsstore: time %v is outside the representable dutc range", t)
	}
	whole := uint64(secs) * dutcUnitsPerSecond
	frac := uint64(nsec*dutcUnitsPerSecond) / 1_000_000_000
	return DUTCValue(whole + frac), nil
}

// ToTime converts the DUTCValue back to a wall-clock time.
func (v DUTCValue) ToTime() time.Time {
	secs := int64(v) / dutcUnitsPerSecond
	rem := int64(v) % dutcUnitsPerSecond
	nsec := (rem * 1_000_000_000) / dutcUnitsPerSecond
	return time.Unix(secs-dutcEpochOffsetSeconds, nsec).UTC()
}

func (v DUTCValue) typeCode() FourCC { return typeDutc }
func (v DUTCValue) payloadSize() int { return 8 }
func (v DUTCValue) encodePayload(w *writer) error {
	w.WriteU64(uint64(v))
	return nil
}

// TypeValue is the on-disk "type" type: a FourCC payload.
type TypeValue FourCC

func (v TypeValue) typeCode() FourCC { return typeType }
func (v TypeValue) payloadSize() int { return 4 }
func (v TypeValue) encodePayload(w *writer) error {
	w.WriteFourCC(FourCC(v))
	return nil
}

// UStrValue is the on-disk "ustr" type: a u32 character count followed by
// that many UTF-16BE code units.
type UStrValue string

func (v UStrValue) typeCode() FourCC { return typeUstr }
func (v UStrValue) payloadSize() int {
	b, units, err := encodeUTF16BE(string(v))
	if err != nil {
		// Size is queried before encodePayload (C6 sizes records before
		// encoding them); for a string that cannot be encoded this returns
		// an estimate, and encodePayload then reports the error.
		_ = b
		return 4 + len(v)*2
	}
	return 4 + int(units)*2
}
func (v UStrValue) encodePayload(w *writer) error {
	b, units, err := encodeUTF16BE(string(v))
	if err != nil {
		return err
	}
	w.WriteU32(units)
	w.WriteBytes(b)
	return nil
}

// blobSniffSignatures are the byte prefixes that mark a blob's contents as a
// property list, per §4.3.
var blobSniffSignatures = [][]byte{
	[]byte("bplist"),
	[]byte("<?xml"),
}

func sniffPlist(b []byte) bool {
	for _, sig := range blobSniffSignatures {
		if bytes.HasPrefix(b, sig) {
			return true
		}
	}
	return false
}

// BlobValue is the on-disk "blob" type: a u32 byte count followed by opaque
// bytes. Decoding a record upgrades a BlobValue whose bytes sniff as a
// property list into a PropertyListValue instead (see decodeBlobOrPlist).
type BlobValue []byte

func (v BlobValue) typeCode() FourCC { return typeBlob }
func (v BlobValue) payloadSize() int { return 4 + len(v) }
func (v BlobValue) encodePayload(w *writer) error {
	if uint64(len(v)) > 0xffffffff {
		return fmt.Errorf("dsstore: blob of %d bytes exceeds the u32 length prefix", len(v))
	}
	w.WriteU32(uint32(len(v)))
	w.WriteBytes(v)
	return nil
}

// PropertyListValue is a blob whose bytes decoded successfully as a property
// list. Content holds the decoded tree in the representation the
// howett.net/plist decoder produces (maps, slices, strings, numbers, []byte,
// time.Time, bool). On write it is re-serialized to binary property-list
// bytes and emitted as a blob.
type PropertyListValue struct {
	Content interface{}
}

func (v PropertyListValue) typeCode() FourCC { return typeBlob }

func (v PropertyListValue) marshal() ([]byte, error) {
	buf, err := plist.Marshal(v.Content, plist.BinaryFormat)
	if err != nil {
		return nil, &PlistSerializationError{Reason: "marshal", Err: err}
	}
	return buf, nil
}

func (v PropertyListValue) payloadSize() int {
	b, err := v.marshal()
	if err != nil {
		return 4
	}
	return 4 + len(b)
}

func (v PropertyListValue) encodePayload(w *writer) error {
	b, err := v.marshal()
	if err != nil {
		return err
	}
	if uint64(len(b)) > 0xffffffff {
		return fmt.Errorf("dsstore: property list of %d bytes exceeds the u32 length prefix", len(b))
	}
	w.WriteU32(uint32(len(b)))
	w.WriteBytes(b)
	return nil
}

// decodeBlobOrPlist decodes a raw blob payload, upgrading it to a
// PropertyListValue when the bytes sniff as a property list and decode
// cleanly; on a sniff-but-fail-to-decode it falls back to an opaque blob.
func decodeBlobOrPlist(b []byte) Value {
	if !sniffPlist(b) {
		return BlobValue(b)
	}
	var v interface{}
	if _, err := plist.Unmarshal(b, &v); err != nil {
		return BlobValue(b)
	}
	return PropertyListValue{Content: v}
}

// BookValue is the on-disk "book" type: a u32 byte count followed by opaque
// bookmark bytes (an alias/bookmark blob the Finder resolves itself).
type BookValue []byte

func (v BookValue) typeCode() FourCC { return typeBook }
func (v BookValue) payloadSize() int { return 4 + len(v) }
func (v BookValue) encodePayload(w *writer) error {
	if uint64(len(v)) > 0xffffffff {
		return fmt.Errorf("dsstore: book of %d bytes exceeds the u32 length prefix", len(v))
	}
	w.WriteU32(uint32(len(v)))
	w.WriteBytes(v)
	return nil
}

// NullValue is the on-disk "null" type (type code 0): no payload.
type NullValue struct{}

func (v NullValue) typeCode() FourCC            { return typeNull }
func (v NullValue) payloadSize() int            { return 0 }
func (v NullValue) encodePayload(*writer) error { return nil }

// decodeValue decodes a value payload given its on-disk type code, per the
// table in §4.3. It returns UnknownDataTypeError for codes not in the table.
func decodeValue(r *reader, code FourCC) (Value, error) {
	switch code {
	case typeBool:
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, corruptf("bool value %d is neither 0 nor 1", b)
		}
		return BoolValue(b == 1), nil
	case typeLong:
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		return LongValue(v), nil
	case typeShor:
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		if v > 0xffff {
			return nil, corruptf("shor value 0x%x has non-zero upper bits", v)
		}
		return ShortValue(v), nil
	case typeComp:
		v, err := r.U64()
		if err != nil {
			return nil, err
		}
		return CompValue(v), nil
	case typeDutc:
		v, err := r.U64()
		if err != nil {
			return nil, err
		}
		return DUTCValue(v), nil
	case typeType:
		v, err := r.FourCC()
		if err != nil {
			return nil, err
		}
		return TypeValue(v), nil
	case typeUstr:
		n, err := r.U32()
		if err != nil {
			return nil, err
		}
		s, err := r.UTF16BE(n)
		if err != nil {
			return nil, err
		}
		return UStrValue(s), nil
	case typeBlob:
		n, err := r.U32()
		if err != nil {
			return nil, err
		}
		b, err := r.Bytes(int(n))
		if err != nil {
			return nil, err
		}
		return decodeBlobOrPlist(b), nil
	case typeBook:
		n, err := r.U32()
		if err != nil {
			return nil, err
		}
		b, err := r.Bytes(int(n))
		if err != nil {
			return nil, err
		}
		return BookValue(b), nil
	case typeNull:
		return NullValue{}, nil
	default:
		return nil, &UnknownDataTypeError{Code: code}
	}
}
