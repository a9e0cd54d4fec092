package dsstore_test

import (
	"testing"

	"github.com/KarpelesLab/dsstore"
)

func TestFourCCRoundTrip(t *testing.T) {
	f, err := dsstore.ParseFourCC("Iloc")
	if err != nil {
		t.Fatalf("ParseFourCC: %s", err)
	}
	if f.String() != "Iloc" {
		t.Errorf("String() = %q, want %q", f.String(), "Iloc")
	}
	if f != dsstore.FourCCIconLocation {
		t.Errorf("ParseFourCC(%q) != FourCCIconLocation", "Iloc")
	}
}

func TestFourCCParseErrors(t *testing.T) {
	cases := []string{"", "ab", "abcde", "ab\xffd"}
	for _, c := range cases {
		if _, err := dsstore.ParseFourCC(c); err == nil {
			t.Errorf("ParseFourCC(%q) succeeded, want error", c)
		}
	}
}

func TestFourCCBytesUint32(t *testing.T) {
	f := dsstore.NewFourCC("BKGD")
	b := f.Bytes()
	if string(b[:]) != "BKGD" {
		t.Errorf("Bytes() = %q, want %q", b, "BKGD")
	}
	if f.Uint32() != 0x424b4744 {
		t.Errorf("Uint32() = 0x%x, want 0x424b4744", f.Uint32())
	}
}
