package dsstore_test

import (
	"testing"

	"github.com/KarpelesLab/dsstore"
)

func TestIconViewSettingsRoundTrip(t *testing.T) {
	rec := dsstore.Record{
		Filename: ".",
		TypeCode: dsstore.FourCCIconViewSettings,
		Value:    dsstore.PropertyListValue{Content: map[string]interface{}{"IconSize": int64(48), "showIconPreview": true}},
	}
	settings, err := dsstore.DecodeIconViewSettings(rec)
	if err != nil {
		t.Fatalf("DecodeIconViewSettings: %s", err)
	}
	if size, ok := settings.IconSize(); !ok || size != 48 {
		t.Errorf("IconSize() = (%d, %v), want (48, true)", size, ok)
	}
	if show, ok := settings.Bool("showIconPreview"); !ok || !show {
		t.Errorf("Bool(showIconPreview) = (%v, %v), want (true, true)", show, ok)
	}

	settings.SetIconSize(96)
	settings.SetString("arrangeBy", "name")

	out := settings.Encode(".")
	if out.TypeCode != dsstore.FourCCIconViewSettings {
		t.Fatalf("Encode() type code = %s, want %s", out.TypeCode, dsstore.FourCCIconViewSettings)
	}

	roundTripped, err := dsstore.DecodeIconViewSettings(out)
	if err != nil {
		t.Fatalf("DecodeIconViewSettings(re-encoded): %s", err)
	}
	if size, ok := roundTripped.IconSize(); !ok || size != 96 {
		t.Errorf("IconSize() after re-encode = (%d, %v), want (96, true)", size, ok)
	}
	if name, ok := roundTripped.String("arrangeBy"); !ok || name != "name" {
		t.Errorf("String(arrangeBy) after re-encode = (%q, %v), want (\"name\", true)", name, ok)
	}
}

func TestListViewSettingsAcceptsBothTypeCodes(t *testing.T) {
	for _, tc := range []dsstore.FourCC{dsstore.FourCCListViewSettings, dsstore.FourCCListViewSettingsAlt} {
		rec := dsstore.Record{
			Filename: ".",
			TypeCode: tc,
			Value:    dsstore.PropertyListValue{Content: map[string]interface{}{"textSize": int64(12)}},
		}
		if _, err := dsstore.DecodeListViewSettings(rec); err != nil {
			t.Errorf("DecodeListViewSettings(%s): %s", tc, err)
		}
	}
}

func TestPlistSettingsWrongTypeCode(t *testing.T) {
	rec := dsstore.Record{Filename: ".", TypeCode: dsstore.FourCCComment, Value: dsstore.UStrValue("hi")}
	if _, err := dsstore.DecodeWindowSettings(rec); err == nil {
		t.Errorf("DecodeWindowSettings on a cmmt record: want error, got nil")
	}
}
