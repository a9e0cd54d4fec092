package dsstore_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/KarpelesLab/dsstore"
	"github.com/google/go-cmp/cmp"
)

func writeAndRead(t *testing.T, c *dsstore.Container) *dsstore.Container {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write: %s", err)
	}
	got, err := dsstore.Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %s", err)
	}
	return got
}

// TestEmptyContainer covers S1: a freshly written container with zero
// records must still produce a container a fresh Read accepts.
func TestEmptyContainer(t *testing.T) {
	c := dsstore.NewContainer()
	got := writeAndRead(t, c)
	if n := len(got.Records()); n != 0 {
		t.Errorf("Records() has %d entries, want 0", n)
	}
}

// TestSingleRecordRoundTrip covers S2: one record, one leaf root.
func TestSingleRecordRoundTrip(t *testing.T) {
	c := dsstore.NewContainer()
	loc := dsstore.IconLocation{X: 10, Y: 20}
	if err := c.Add(loc.Encode("Documents")); err != nil {
		t.Fatalf("Add: %s", err)
	}
	got := writeAndRead(t, c)
	recs := got.Records()
	if len(recs) != 1 {
		t.Fatalf("Records() has %d entries, want 1", len(recs))
	}
	decoded, err := dsstore.DecodeIconLocation(recs[0])
	if err != nil {
		t.Fatalf("DecodeIconLocation: %s", err)
	}
	if decoded != loc {
		t.Errorf("decoded = %+v, want %+v", decoded, loc)
	}
}

// TestMixedValueTypesRoundTrip exercises every on-disk value type in one
// container.
func TestMixedValueTypesRoundTrip(t *testing.T) {
	c := dsstore.NewContainer()
	records := []dsstore.Record{
		{Filename: "a.txt", TypeCode: dsstore.NewFourCC("bool"), Value: dsstore.BoolValue(true)},
		{Filename: "b.txt", TypeCode: dsstore.NewFourCC("long"), Value: dsstore.LongValue(123456)},
		{Filename: "c.txt", TypeCode: dsstore.NewFourCC("shor"), Value: mustShort(t, 42)},
		{Filename: "d.txt", TypeCode: dsstore.NewFourCC("comp"), Value: dsstore.CompValue(9999999999)},
		{Filename: "e.txt", TypeCode: dsstore.NewFourCC("type"), Value: dsstore.TypeValue(dsstore.ViewStyleIcon)},
		{Filename: "e2.txt", TypeCode: dsstore.NewFourCC("dutc"), Value: dsstore.DUTCValue(0x0000d5e3a1b20000)},
		{Filename: "f.txt", TypeCode: dsstore.FourCCComment, Value: dsstore.UStrValue("a comment with Ünïcode")},
		{Filename: "g.txt", TypeCode: dsstore.NewFourCC("xblb"), Value: dsstore.BlobValue([]byte{1, 2, 3, 4, 5})},
		{Filename: "h.txt", TypeCode: dsstore.NewFourCC("xbok"), Value: dsstore.BookValue([]byte{9, 9, 9})},
		{Filename: "i.txt", TypeCode: dsstore.NewFourCC("xnul"), Value: dsstore.NullValue{}},
		{Filename: ".", TypeCode: dsstore.FourCCWindowSettings, Value: dsstore.PropertyListValue{Content: map[string]interface{}{"key": "value"}}},
	}
	for _, r := range records {
		if err := c.Add(r); err != nil {
			t.Fatalf("Add(%q): %s", r.Filename, err)
		}
	}

	got := writeAndRead(t, c)
	gotRecs := got.Records()
	if len(gotRecs) != len(records) {
		t.Fatalf("Records() has %d entries, want %d", len(gotRecs), len(records))
	}
	for _, want := range records {
		gotRec, ok := got.Lookup(want.ID())
		if !ok {
			t.Errorf("missing record %v", want.ID())
			continue
		}
		if diff := cmp.Diff(fmt.Sprint(want.Value), fmt.Sprint(gotRec.Value)); diff != "" {
			t.Errorf("record %v value mismatch (-want +got):\n%s", want.ID(), diff)
		}
	}
}

func mustShort(t *testing.T, v uint32) dsstore.ShortValue {
	t.Helper()
	s, err := dsstore.NewShortValue(v)
	if err != nil {
		t.Fatalf("NewShortValue(%d): %s", v, err)
	}
	return s
}

// TestDuplicateIdentityReplaces covers the Add dedup-by-ID-and-replace rule.
func TestDuplicateIdentityReplaces(t *testing.T) {
	c := dsstore.NewContainer()
	if err := c.Add(dsstore.IconLocation{X: 1, Y: 1}.Encode("f")); err != nil {
		t.Fatalf("Add: %s", err)
	}
	if err := c.Add(dsstore.IconLocation{X: 2, Y: 2}.Encode("f")); err != nil {
		t.Fatalf("Add (replace): %s", err)
	}
	recs := c.Records()
	if len(recs) != 1 {
		t.Fatalf("Records() has %d entries, want 1", len(recs))
	}
	loc, err := dsstore.DecodeIconLocation(recs[0])
	if err != nil {
		t.Fatalf("DecodeIconLocation: %s", err)
	}
	if loc.X != 2 || loc.Y != 2 {
		t.Errorf("Records()[0] = %+v, want the replacement value", loc)
	}
}

// TestRemove covers Remove's bool-returning identity deletion.
func TestRemove(t *testing.T) {
	c := dsstore.NewContainer()
	rec := dsstore.IconLocation{X: 1, Y: 1}.Encode("f")
	if err := c.Add(rec); err != nil {
		t.Fatalf("Add: %s", err)
	}
	if !c.Remove(rec.ID()) {
		t.Errorf("Remove() = false, want true")
	}
	if c.Remove(rec.ID()) {
		t.Errorf("second Remove() = true, want false")
	}
	if len(c.Records()) != 0 {
		t.Errorf("Records() not empty after Remove")
	}
}

// TestOrderingIsCaseAndDiacriticInsensitive covers §3's total order.
func TestOrderingIsCaseAndDiacriticInsensitive(t *testing.T) {
	c := dsstore.NewContainer()
	names := []string{"banana", "Apple", "éclair", "zebra", "APPLE2"}
	for _, n := range names {
		if err := c.Add(dsstore.IconLocation{}.Encode(n)); err != nil {
			t.Fatalf("Add(%q): %s", n, err)
		}
	}
	got := writeAndRead(t, c)
	recs := got.Records()
	var order []string
	for _, r := range recs {
		order = append(order, r.Filename)
	}
	want := []string{"Apple", "APPLE2", "banana", "éclair", "zebra"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}
}

// TestFoldedEqualFilenamesAreDistinct covers S3: "A.txt" and "a.txt" fold
// equal under the case/diacritic-insensitive compare used for ordering, but
// are still distinct record identities and must both survive a round trip.
func TestFoldedEqualFilenamesAreDistinct(t *testing.T) {
	c := dsstore.NewContainer()
	if err := c.Add(dsstore.IconLocation{X: 1, Y: 1}.Encode("A.txt")); err != nil {
		t.Fatalf("Add(%q): %s", "A.txt", err)
	}
	if err := c.Add(dsstore.IconLocation{X: 2, Y: 2}.Encode("a.txt")); err != nil {
		t.Fatalf("Add(%q): %s", "a.txt", err)
	}
	got := writeAndRead(t, c)
	recs := got.Records()
	if len(recs) != 2 {
		t.Fatalf("Records() has %d entries, want 2", len(recs))
	}
	for _, want := range []struct {
		name string
		loc  dsstore.IconLocation
	}{
		{"A.txt", dsstore.IconLocation{X: 1, Y: 1}},
		{"a.txt", dsstore.IconLocation{X: 2, Y: 2}},
	} {
		rec, ok := got.Lookup(dsstore.RecordID{Filename: want.name, TypeCode: dsstore.FourCCIconLocation})
		if !ok {
			t.Errorf("missing record %q", want.name)
			continue
		}
		loc, err := dsstore.DecodeIconLocation(rec)
		if err != nil {
			t.Fatalf("DecodeIconLocation(%q): %s", want.name, err)
		}
		if loc != want.loc {
			t.Errorf("decoded(%q) = %+v, want %+v", want.name, loc, want.loc)
		}
	}
}

// TestLargeTree covers S6: 1500 records must produce a multi-level tree
// that still traverses back out in full, sorted order.
func TestLargeTree(t *testing.T) {
	c := dsstore.NewContainer()
	const n = 1500
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("File-%04d.txt", i)
		if err := c.Add(dsstore.IconLocation{X: uint32(i), Y: uint32(i)}.Encode(name)); err != nil {
			t.Fatalf("Add(%q): %s", name, err)
		}
	}
	got := writeAndRead(t, c)
	recs := got.Records()
	if len(recs) != n {
		t.Fatalf("Records() has %d entries, want %d", len(recs), n)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Filename > recs[i].Filename {
			t.Fatalf("records not in sorted order at index %d: %q > %q", i, recs[i-1].Filename, recs[i].Filename)
		}
	}
}

// TestReadRejectsBadMagic covers the container header validation.
func TestReadRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 64)
	buf[3] = 1 // alignment = 1
	// leave magic as zero, which is not "Bud1"
	if _, err := dsstore.Read(bytes.NewReader(buf)); err == nil {
		t.Errorf("Read() with bad magic: want error, got nil")
	}
}

// TestReadRejectsOffsetMismatch covers the two-copy allocator offset check.
func TestReadRejectsOffsetMismatch(t *testing.T) {
	c := dsstore.NewContainer()
	if err := c.Add(dsstore.IconLocation{X: 1, Y: 1}.Encode("f")); err != nil {
		t.Fatalf("Add: %s", err)
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write: %s", err)
	}
	b := buf.Bytes()
	b[0x10] ^= 0xff // corrupt the second copy of the allocator offset
	if _, err := dsstore.Read(bytes.NewReader(b)); err == nil {
		t.Errorf("Read() with corrupted offset check: want error, got nil")
	}
}

// TestOversizedRecordRejected covers the single-record page-budget guard.
func TestOversizedRecordRejected(t *testing.T) {
	c := dsstore.NewContainer()
	huge := dsstore.BlobValue(make([]byte, 8192))
	if err := c.Add(dsstore.Record{Filename: "f", TypeCode: dsstore.NewFourCC("xblb"), Value: huge}); err != nil {
		t.Fatalf("Add: %s", err)
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err == nil {
		t.Errorf("Write() with an oversized record: want error, got nil")
	}
}
