package dsstore

import (
	"io"
	"log"
	"sort"
)

const filePrefixSize = 36

var magicBud1 = NewFourCC("Bud1")

// Container is the in-memory, decoded form of a .DS_Store-style file: an
// ordered set of records, deduplicated by (filename, typeCode). It owns no
// file handle; Read and Write are the only boundary to I/O, mirroring the
// teacher's io.ReaderAt-in, byte-buffer-out shape in super.go/writer.go.
type Container struct {
	records map[RecordID]Record
}

// NewContainer returns an empty container, ready for Add and Write.
func NewContainer() *Container {
	return &Container{records: make(map[RecordID]Record)}
}

// Records returns the container's records in the deterministic total order
// from §3 (case/diacritic-insensitive filename, then type code).
func (c *Container) Records() []Record {
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return compareRecords(out[i], out[j]) < 0 })
	return out
}

// Lookup returns the record with the given identity, if present.
func (c *Container) Lookup(id RecordID) (Record, bool) {
	r, ok := c.records[id]
	return r, ok
}

// Add inserts r, replacing any existing record with the same (filename,
// typeCode) identity.
func (c *Container) Add(r Record) error {
	if err := validateFilename(r.Filename); err != nil {
		return err
	}
	c.records[r.ID()] = r
	return nil
}

// Remove deletes the record with the given identity, if present, reporting
// whether anything was removed.
func (c *Container) Remove(id RecordID) bool {
	if _, ok := c.records[id]; !ok {
		return false
	}
	delete(c.records, id)
	return true
}

// Read parses a complete container from fs, per §4.9. Sub-component errors
// (allocator, B-tree) are surfaced as-is; they already satisfy the public
// error taxonomy (§7).
func Read(fs io.ReaderAt, opts ...ReadOption) (*Container, error) {
	cfg := defaultReadConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, &ReadFailedError{Reason: "applying read option", Err: err}
		}
	}

	log.Printf("dsstore: read header %d bytes", filePrefixSize)
	head := make([]byte, filePrefixSize)
	if _, err := fs.ReadAt(head, 0); err != nil {
		return nil, &ReadFailedError{Reason: "reading file prefix", Err: err}
	}

	r := newReader(head)
	alignment, err := r.U32()
	if err != nil {
		return nil, &ReadFailedError{Reason: "reading alignment", Err: err}
	}
	if alignment != 1 {
		return nil, ErrInvalidHeader
	}
	magic, err := r.U32()
	if err != nil {
		return nil, &ReadFailedError{Reason: "reading magic", Err: err}
	}
	if fourCCFromUint32(magic) != magicBud1 {
		return nil, ErrInvalidMagic
	}
	allocatorOffset, err := r.U32()
	if err != nil {
		return nil, &ReadFailedError{Reason: "reading allocator offset", Err: err}
	}
	allocatorSize, err := r.U32()
	if err != nil {
		return nil, &ReadFailedError{Reason: "reading allocator size", Err: err}
	}
	allocatorOffsetCheck, err := r.U32()
	if err != nil {
		return nil, &ReadFailedError{Reason: "reading allocator offset check", Err: err}
	}
	if allocatorOffsetCheck != allocatorOffset {
		return nil, ErrOffsetMismatch
	}
	if _, err := r.Bytes(16); err != nil {
		return nil, &ReadFailedError{Reason: "reading reserved header bytes", Err: err}
	}

	log.Printf("dsstore: header ok, allocator at %d (%d bytes)", allocatorOffset, allocatorSize)

	whole, err := readAll(fs)
	if err != nil {
		return nil, &ReadFailedError{Reason: "reading file body", Err: err}
	}

	alloc, err := decodeAllocator(whole, int(allocatorOffset)+4, int(allocatorSize), cfg.diag)
	if err != nil {
		return nil, err
	}

	hdr, _, err := readBTreeHeader(whole, alloc)
	if err != nil {
		return nil, err
	}

	maxDepth := cfg.maxTreeDepth
	if int(hdr.nodeCount) < maxDepth {
		maxDepth = int(hdr.nodeCount)
	}
	recs, nodes, internalLevels, err := readTree(whole, alloc, cfg.diag, hdr.rootNodeBlock, maxDepth)
	if err != nil {
		return nil, err
	}

	if uint32(nodes) != hdr.nodeCount {
		return nil, corruptf("traversal visited %d nodes, header declares %d", nodes, hdr.nodeCount)
	}
	if uint32(len(recs)) != hdr.recordCount {
		return nil, corruptf("traversal emitted %d records, header declares %d", len(recs), hdr.recordCount)
	}
	if uint32(internalLevels) != hdr.internalLevelCount {
		return nil, corruptf("traversal observed %d internal levels, header declares %d", internalLevels, hdr.internalLevelCount)
	}

	c := NewContainer()
	for _, rec := range recs {
		c.records[rec.ID()] = rec
	}
	return c, nil
}

// readAll drains an io.ReaderAt: in one read when it also has a Size method,
// otherwise by probing in fixed 64 KiB chunks until EOF, since io.ReaderAt
// has no Size method of its own.
func readAll(fs io.ReaderAt) ([]byte, error) {
	if sz, ok := fs.(interface{ Size() int64 }); ok {
		buf := make([]byte, sz.Size())
		if _, err := fs.ReadAt(buf, 0); err != nil && err != io.EOF {
			return nil, err
		}
		return buf, nil
	}
	var buf []byte
	chunk := make([]byte, 64*1024)
	off := int64(0)
	for {
		n, err := fs.ReadAt(chunk, off)
		buf = append(buf, chunk[:n]...)
		off += int64(n)
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return buf, nil
		}
	}
}

// Write serializes c to w as a fresh container, per §4.9's write path. The
// output is rebuilt from scratch, so it need not be byte-identical to the
// encoding the records were read from (§1 Non-goals).
func (c *Container) Write(w io.Writer, opts ...WriteOption) error {
	cfg := defaultWriteConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return &WriteFailedError{Reason: "applying write option", Err: err}
		}
	}

	recs := c.Records()

	builder := newBTreeBuilder(int(cfg.pageSize))
	for _, rec := range recs {
		if err := builder.insert(rec); err != nil {
			return &WriteFailedError{Reason: "building B-tree", Err: err}
		}
	}
	arena, rootIdx := builder.finish()

	plan, encoded, err := planLayout(arena, rootIdx, cfg.pageSize)
	if err != nil {
		return &WriteFailedError{Reason: "planning layout", Err: err}
	}

	internalLevelCount, nodeCount := treeShape(arena, rootIdx)

	buf := make([]byte, plan.fileEnd)

	prefix := newWriter()
	prefix.WriteU32(1)
	prefix.WriteFourCC(magicBud1)
	prefix.WriteU32(plan.allocatorOffset - 4)
	prefix.WriteU32(uint32(1) << plan.allocatorP)
	prefix.WriteU32(plan.allocatorOffset - 4)
	prefix.WriteBytes(make([]byte, 16))
	copy(buf[0:], prefix.Bytes())

	meta := newWriter()
	meta.WriteU32(plan.nodeBlock[rootIdx])
	meta.WriteU32(internalLevelCount)
	meta.WriteU32(uint32(len(recs)))
	meta.WriteU32(nodeCount)
	meta.WriteU32(cfg.pageSize)
	if err := meta.PadTo(int(rootMetaSize) - 4); err != nil {
		return &WriteFailedError{Reason: "padding root metadata block", Err: err}
	}
	// The block's first 4 bytes are the fixed alignment-prefix gap every
	// block reserves before its data (§6); actual header fields start at
	// rootMetaOffset+4.
	copy(buf[rootMetaOffset+4:], meta.Bytes())

	for _, idx := range plan.nodeOrder {
		pl := plan.nodePlace[idx]
		copy(buf[pl.offset+4:], encoded[idx])
	}

	// planLayout already found the allocator size (p) that fits this exact
	// block table and free-list layout; reuse its serialized bytes rather
	// than recomputing (and risking divergence from) the same allocator.
	copy(buf[plan.allocatorOffset:], plan.allocatorSerialized)

	log.Printf("dsstore: writing %d bytes (%d records, %d nodes)", len(buf), len(recs), nodeCount)
	if _, err := w.Write(buf); err != nil {
		return &WriteFailedError{Reason: "writing output", Err: err}
	}
	return nil
}

// treeShape computes the (internalLevelCount, nodeCount) pair the B-tree
// header records, by walking the same traversal order the reader uses.
func treeShape(arena []*btreeNode, rootIdx int) (internalLevelCount uint32, nodeCount uint32) {
	var maxDepth int
	var sawIntern bool
	var count uint32
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		count++
		n := arena[idx]
		if n.leaf {
			return
		}
		sawIntern = true
		if depth > maxDepth {
			maxDepth = depth
		}
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	walk(rootIdx, 0)
	if sawIntern {
		internalLevelCount = uint32(maxDepth + 1)
	}
	return internalLevelCount, count
}
