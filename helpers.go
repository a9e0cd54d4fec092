package dsstore

import "fmt"

// Thin typed façades over specific record payloads, per §6 of the on-disk
// layouts they decode/encode (C10). They own no state and never bypass the
// value codec (C3): each Decode reads a Record's existing Value, each Encode
// produces one.

// IconLocation is the decoded "Iloc" payload: a 2D icon position, stored as
// (u32 x, u32 y) followed by 6 bytes of 0xFF and 2 bytes of zero padding.
type IconLocation struct {
	X, Y uint32
}

// DecodeIconLocation reads an IconLocation out of r's Value, which must be a
// BlobValue of exactly 16 bytes.
func DecodeIconLocation(r Record) (IconLocation, error) {
	b, err := blobBytes(r, FourCCIconLocation)
	if err != nil {
		return IconLocation{}, err
	}
	if len(b) != 16 {
		return IconLocation{}, corruptf("Iloc payload is %d bytes, want 16", len(b))
	}
	rd := newReader(b)
	x, _ := rd.U32()
	y, _ := rd.U32()
	return IconLocation{X: x, Y: y}, nil
}

// Encode returns the Iloc record for filename.
func (loc IconLocation) Encode(filename string) Record {
	w := newWriter()
	w.WriteU32(loc.X)
	w.WriteU32(loc.Y)
	w.WriteBytes([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00})
	return Record{Filename: filename, TypeCode: FourCCIconLocation, Value: BlobValue(w.Bytes())}
}

// Background is the decoded "BKGD" payload: either the default background,
// a solid color, or a reference to a separate "pict" record's picture bytes.
type Background struct {
	Kind     BackgroundKind
	Color    RGBColor
	AliasLen uint32
}

// BackgroundKind discriminates the Background payload's first 4-byte tag.
type BackgroundKind int

const (
	BackgroundDefault BackgroundKind = iota
	BackgroundColor
	BackgroundPicture
)

// RGBColor is a 16-bit-per-channel color, as stored in a ClrB background.
type RGBColor struct {
	R, G, B uint16
}

var (
	backgroundDefB = NewFourCC("DefB")
	backgroundClrB = NewFourCC("ClrB")
	backgroundPctB = NewFourCC("PctB")
)

// DecodeBackground reads a Background out of r's Value.
func DecodeBackground(r Record) (Background, error) {
	b, err := blobBytes(r, FourCCBackground)
	if err != nil {
		return Background{}, err
	}
	if len(b) < 4 {
		return Background{}, corruptf("BKGD payload is %d bytes, want at least 4", len(b))
	}
	head := newReader(b)
	tag, _ := head.FourCC()
	rd := newReader(b[4:])
	switch tag {
	case backgroundDefB:
		return Background{Kind: BackgroundDefault}, nil
	case backgroundClrB:
		r, _ := rd.U16()
		g, _ := rd.U16()
		bl, _ := rd.U16()
		return Background{Kind: BackgroundColor, Color: RGBColor{R: r, G: g, B: bl}}, nil
	case backgroundPctB:
		aliasLen, _ := rd.U32()
		return Background{Kind: BackgroundPicture, AliasLen: aliasLen}, nil
	default:
		return Background{}, corruptf("unrecognized BKGD tag %s", tag)
	}
}

// Encode returns the BKGD record for filename.
func (bg Background) Encode(filename string) Record {
	w := newWriter()
	switch bg.Kind {
	case BackgroundColor:
		w.WriteFourCC(backgroundClrB)
		w.WriteU16(bg.Color.R)
		w.WriteU16(bg.Color.G)
		w.WriteU16(bg.Color.B)
		w.WriteU16(0)
	case BackgroundPicture:
		w.WriteFourCC(backgroundPctB)
		w.WriteU32(bg.AliasLen)
		w.WriteU32(0)
	default:
		w.WriteFourCC(backgroundDefB)
	}
	return Record{Filename: filename, TypeCode: FourCCBackground, Value: BlobValue(w.Bytes())}
}

// WindowInfo is the decoded "fwi0" payload: the window's bounds rectangle
// and the view style it was last shown with.
type WindowInfo struct {
	Top, Left, Bottom, Right uint16
	ViewStyle                FourCC
}

// DecodeWindowInfo reads a WindowInfo out of r's Value.
func DecodeWindowInfo(r Record) (WindowInfo, error) {
	b, err := blobBytes(r, FourCCWindowInfo)
	if err != nil {
		return WindowInfo{}, err
	}
	if len(b) != 16 {
		return WindowInfo{}, corruptf("fwi0 payload is %d bytes, want 16", len(b))
	}
	rd := newReader(b)
	top, _ := rd.U16()
	left, _ := rd.U16()
	bottom, _ := rd.U16()
	right, _ := rd.U16()
	style, _ := rd.FourCC()
	return WindowInfo{Top: top, Left: left, Bottom: bottom, Right: right, ViewStyle: style}, nil
}

// Encode returns the fwi0 record for filename.
func (wi WindowInfo) Encode(filename string) Record {
	w := newWriter()
	w.WriteU16(wi.Top)
	w.WriteU16(wi.Left)
	w.WriteU16(wi.Bottom)
	w.WriteU16(wi.Right)
	w.WriteFourCC(wi.ViewStyle)
	w.WriteU32(0)
	return Record{Filename: filename, TypeCode: FourCCWindowInfo, Value: BlobValue(w.Bytes())}
}

// View style FourCC values for ViewStyle / WindowInfo.ViewStyle.
var (
	ViewStyleIcon = NewFourCC("icnv")
	ViewStyleList = NewFourCC("clmv")
	ViewStyleNlsv = NewFourCC("Nlsv")
	ViewStyleFlow = NewFourCC("Flwv")
)

// DecodeViewStyle reads the "vstl" record's FourCC value.
func DecodeViewStyle(r Record) (FourCC, error) {
	return typeValueFourCC(r, FourCCViewStyle)
}

// EncodeViewStyle returns the vstl record for filename.
func EncodeViewStyle(filename string, style FourCC) Record {
	return Record{Filename: filename, TypeCode: FourCCViewStyle, Value: TypeValue(style)}
}

// View sort FourCC values for ViewSort.
var (
	ViewSortNone = NewFourCC("none")
	ViewSortName = NewFourCC("name")
	ViewSortKind = NewFourCC("kind")
	ViewSortModd = NewFourCC("modd")
	ViewSortCrea = NewFourCC("crea")
	ViewSortSize = NewFourCC("size")
	ViewSortLabl = NewFourCC("labl")
)

// DecodeViewSort reads the "vSrn" record's FourCC value.
func DecodeViewSort(r Record) (FourCC, error) {
	return typeValueFourCC(r, FourCCViewSort)
}

// EncodeViewSort returns the vSrn record for filename.
func EncodeViewSort(filename string, sort FourCC) Record {
	return Record{Filename: filename, TypeCode: FourCCViewSort, Value: TypeValue(sort)}
}

// PutBackLocation is the decoded "ptbL" payload: the trash put-back path.
// When the stored path does not begin with "/", Decode prefixes one, per §6.
type PutBackLocation string

// DecodePutBackLocation reads a PutBackLocation out of r's Value.
func DecodePutBackLocation(r Record) (PutBackLocation, error) {
	if r.TypeCode != FourCCPutBackLocation {
		return "", fmt.Errorf("dsstore: record type %s is not %s", r.TypeCode, FourCCPutBackLocation)
	}
	var s string
	switch v := r.Value.(type) {
	case UStrValue:
		s = string(v)
	case BlobValue:
		s = string(v)
	default:
		return "", corruptf("ptbL value has unexpected type %T", r.Value)
	}
	if len(s) > 0 && s[0] != '/' {
		s = "/" + s
	}
	return PutBackLocation(s), nil
}

// Encode returns the ptbL record for filename.
func (p PutBackLocation) Encode(filename string) Record {
	return Record{Filename: filename, TypeCode: FourCCPutBackLocation, Value: UStrValue(p)}
}

// blobBytes fetches r's Value as raw blob bytes, checking r carries the
// expected type code.
func blobBytes(r Record, want FourCC) ([]byte, error) {
	if r.TypeCode != want {
		return nil, fmt.Errorf("dsstore: record type %s is not %s", r.TypeCode, want)
	}
	b, ok := r.Value.(BlobValue)
	if !ok {
		return nil, corruptf("%s value has unexpected type %T", want, r.Value)
	}
	return []byte(b), nil
}

// typeValueFourCC fetches r's Value as a TypeValue FourCC, checking r
// carries the expected record type code.
func typeValueFourCC(r Record, want FourCC) (FourCC, error) {
	if r.TypeCode != want {
		return 0, fmt.Errorf("dsstore: record type %s is not %s", r.TypeCode, want)
	}
	v, ok := r.Value.(TypeValue)
	if !ok {
		return 0, corruptf("%s value has unexpected type %T", want, r.Value)
	}
	return FourCC(v), nil
}
