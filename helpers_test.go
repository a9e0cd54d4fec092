package dsstore_test

import (
	"testing"

	"github.com/KarpelesLab/dsstore"
)

func TestIconLocationRoundTrip(t *testing.T) {
	loc := dsstore.IconLocation{X: 120, Y: 340}
	rec := loc.Encode(".")
	got, err := dsstore.DecodeIconLocation(rec)
	if err != nil {
		t.Fatalf("DecodeIconLocation: %s", err)
	}
	if got != loc {
		t.Errorf("DecodeIconLocation() = %+v, want %+v", got, loc)
	}
}

func TestBackgroundRoundTrip(t *testing.T) {
	cases := []dsstore.Background{
		{Kind: dsstore.BackgroundDefault},
		{Kind: dsstore.BackgroundColor, Color: dsstore.RGBColor{R: 0x1111, G: 0x2222, B: 0x3333}},
		{Kind: dsstore.BackgroundPicture, AliasLen: 42},
	}
	for _, bg := range cases {
		rec := bg.Encode(".")
		got, err := dsstore.DecodeBackground(rec)
		if err != nil {
			t.Fatalf("DecodeBackground(%+v): %s", bg, err)
		}
		if got != bg {
			t.Errorf("DecodeBackground() = %+v, want %+v", got, bg)
		}
	}
}

func TestWindowInfoRoundTrip(t *testing.T) {
	wi := dsstore.WindowInfo{Top: 10, Left: 20, Bottom: 500, Right: 600, ViewStyle: dsstore.ViewStyleIcon}
	rec := wi.Encode(".")
	got, err := dsstore.DecodeWindowInfo(rec)
	if err != nil {
		t.Fatalf("DecodeWindowInfo: %s", err)
	}
	if got != wi {
		t.Errorf("DecodeWindowInfo() = %+v, want %+v", got, wi)
	}
}

func TestViewStyleAndSortRoundTrip(t *testing.T) {
	styleRec := dsstore.EncodeViewStyle(".", dsstore.ViewStyleFlow)
	style, err := dsstore.DecodeViewStyle(styleRec)
	if err != nil {
		t.Fatalf("DecodeViewStyle: %s", err)
	}
	if style != dsstore.ViewStyleFlow {
		t.Errorf("DecodeViewStyle() = %s, want %s", style, dsstore.ViewStyleFlow)
	}

	sortRec := dsstore.EncodeViewSort(".", dsstore.ViewSortKind)
	sortVal, err := dsstore.DecodeViewSort(sortRec)
	if err != nil {
		t.Fatalf("DecodeViewSort: %s", err)
	}
	if sortVal != dsstore.ViewSortKind {
		t.Errorf("DecodeViewSort() = %s, want %s", sortVal, dsstore.ViewSortKind)
	}
}

func TestPutBackLocationPrefixesSlash(t *testing.T) {
	rec := dsstore.PutBackLocation("Users/bob/Desktop").Encode(".")
	got, err := dsstore.DecodePutBackLocation(rec)
	if err != nil {
		t.Fatalf("DecodePutBackLocation: %s", err)
	}
	if got != "/Users/bob/Desktop" {
		t.Errorf("DecodePutBackLocation() = %q, want %q", got, "/Users/bob/Desktop")
	}
}

func TestPutBackLocationWrongType(t *testing.T) {
	rec := dsstore.IconLocation{X: 1, Y: 2}.Encode(".")
	if _, err := dsstore.DecodePutBackLocation(rec); err == nil {
		t.Errorf("DecodePutBackLocation on an Iloc record: want error, got nil")
	}
}
