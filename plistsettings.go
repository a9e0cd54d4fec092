package dsstore

import "fmt"

// PlistSettings is a typed façade over the plist-backed settings records
// ("bwsp", "icvp", "lsvp"/"lsvP", "glvp"): a map preserving unknown keys,
// mutated through named accessors for the keys §6 documents, and
// re-encoded losslessly for the rest (C10).
type PlistSettings struct {
	typeCode FourCC
	fields   map[string]interface{}
}

// DecodeWindowSettings reads the "bwsp" record's inline property list.
func DecodeWindowSettings(r Record) (PlistSettings, error) {
	return decodePlistSettings(r, FourCCWindowSettings)
}

// DecodeIconViewSettings reads the "icvp" record's inline property list.
func DecodeIconViewSettings(r Record) (PlistSettings, error) {
	return decodePlistSettings(r, FourCCIconViewSettings)
}

// DecodeListViewSettings reads an "lsvp" or "lsvP" record's inline property list.
func DecodeListViewSettings(r Record) (PlistSettings, error) {
	if r.TypeCode != FourCCListViewSettings && r.TypeCode != FourCCListViewSettingsAlt {
		return PlistSettings{}, fmt.Errorf("dsstore: record type %s is not lsvp/lsvP", r.TypeCode)
	}
	return decodePlistSettings(r, r.TypeCode)
}

// DecodeGalleryViewSettings reads the "glvp" record's inline property list.
func DecodeGalleryViewSettings(r Record) (PlistSettings, error) {
	return decodePlistSettings(r, FourCCGalleryViewSettings)
}

func decodePlistSettings(r Record, want FourCC) (PlistSettings, error) {
	if r.TypeCode != want {
		return PlistSettings{}, fmt.Errorf("dsstore: record type %s is not %s", r.TypeCode, want)
	}
	m, err := plistValueMap(r.Value)
	if err != nil {
		return PlistSettings{}, err
	}
	return PlistSettings{typeCode: r.TypeCode, fields: m}, nil
}

// plistValueMap normalizes a Record's Value into a string-keyed map,
// accepting either an already-upgraded PropertyListValue or a raw blob that
// sniffs as one.
func plistValueMap(v Value) (map[string]interface{}, error) {
	var content interface{}
	switch val := v.(type) {
	case PropertyListValue:
		content = val.Content
	case BlobValue:
		upgraded := decodeBlobOrPlist([]byte(val))
		pl, ok := upgraded.(PropertyListValue)
		if !ok {
			return nil, corruptf("blob value does not decode as a property list")
		}
		content = pl.Content
	default:
		return nil, corruptf("value has unexpected type %T for a plist-backed settings record", v)
	}
	m, ok := content.(map[string]interface{})
	if !ok {
		return nil, corruptf("property list root is %T, want a dictionary", content)
	}
	return m, nil
}

// Encode returns the settings record for filename, re-serializing fields
// (including any unknown keys it was decoded with) to a binary property list.
func (s PlistSettings) Encode(filename string) Record {
	return Record{Filename: filename, TypeCode: s.typeCode, Value: PropertyListValue{Content: s.fields}}
}

// String returns a named string field, or ok=false if absent or not a string.
func (s PlistSettings) String(key string) (string, bool) {
	v, ok := s.fields[key].(string)
	return v, ok
}

// SetString sets a named string field.
func (s PlistSettings) SetString(key, value string) {
	s.fields[key] = value
}

// Bool returns a named boolean field, or ok=false if absent or not a bool.
func (s PlistSettings) Bool(key string) (bool, bool) {
	v, ok := s.fields[key].(bool)
	return v, ok
}

// SetBool sets a named boolean field.
func (s PlistSettings) SetBool(key string, value bool) {
	s.fields[key] = value
}

// Int returns a named integer field (widened from whatever numeric type the
// plist decoder produced), or ok=false if absent or not numeric.
func (s PlistSettings) Int(key string) (int64, bool) {
	switch v := s.fields[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

// SetInt sets a named integer field.
func (s PlistSettings) SetInt(key string, value int64) {
	s.fields[key] = value
}

// IconSize returns icvp's "IconSize" field, a thin convenience over Int for
// the one key every icon-view settings record carries.
func (s PlistSettings) IconSize() (int64, bool) {
	return s.Int("IconSize")
}

// SetIconSize sets icvp's "IconSize" field.
func (s PlistSettings) SetIconSize(size int64) {
	s.SetInt("IconSize", size)
}
