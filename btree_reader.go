package dsstore

// btreeHeader is the fixed 20-byte prefix of the root metadata block (§3, §6).
type btreeHeader struct {
	rootNodeBlock      uint32
	internalLevelCount uint32
	recordCount        uint32
	nodeCount          uint32
	pageSize           uint32
}

const pageSize = 0x1000

// readBTreeHeader parses the root metadata block located at block 1 (the
// allocator's "DSDB" table-of-contents entry) and validates its own
// invariants, per §4.5.
func readBTreeHeader(buf []byte, alloc *allocatorState) (*btreeHeader, uint32, error) {
	dsdbBlock, ok := alloc.toc["DSDB"]
	if !ok {
		return nil, 0, corruptf("no DSDB entry in table of contents")
	}
	off, _, err := alloc.blockDataOffset(dsdbBlock)
	if err != nil {
		return nil, 0, err
	}
	r, err := newReaderAt(buf, int(off))
	if err != nil {
		return nil, 0, err
	}

	h := &btreeHeader{}
	var fields = []*uint32{&h.rootNodeBlock, &h.internalLevelCount, &h.recordCount, &h.nodeCount, &h.pageSize}
	for _, f := range fields {
		v, err := r.U32()
		if err != nil {
			return nil, 0, err
		}
		*f = v
	}

	if h.pageSize != pageSize {
		return nil, 0, ErrInvalidBTreeHeader
	}
	if h.rootNodeBlock == 0 {
		return nil, 0, ErrInvalidBTreeHeader
	}
	if h.internalLevelCount > h.nodeCount {
		return nil, 0, ErrInvalidBTreeHeader
	}

	return h, dsdbBlock, nil
}

// btreeWalker carries the traversal state for a single readTree call: visited
// block numbers, the running record count, the last-emitted record (for the
// order check), and the deepest internal node reached.
type btreeWalker struct {
	buf       []byte
	alloc     *allocatorState
	diag      *diagHandler
	maxDepth  int
	visited   map[uint32]bool
	lastRec   *Record
	haveLast  bool
	sawOrderV bool
	records   []Record
	seen      map[RecordID]bool
	nodes     int
	sawIntern bool
	maxIntern int
}

// readTree performs the depth-first, left-to-right traversal described in
// §4.5 from rootBlock, returning the records in on-disk order plus the
// observed node count and internal-level count for cross-checking against
// the header.
func readTree(buf []byte, alloc *allocatorState, diag *diagHandler, rootBlock uint32, maxDepth int) ([]Record, int, int, error) {
	w := &btreeWalker{
		buf:      buf,
		alloc:    alloc,
		diag:     diag,
		maxDepth: maxDepth,
		visited:  make(map[uint32]bool),
		seen:     make(map[RecordID]bool),
	}
	if err := w.visit(rootBlock, 0); err != nil {
		return nil, 0, 0, err
	}
	internalLevels := 0
	if w.sawIntern {
		internalLevels = w.maxIntern + 1
	}
	return w.records, w.nodes, internalLevels, nil
}

func (w *btreeWalker) emit(rec Record) error {
	if w.seen[rec.ID()] {
		return corruptf("duplicate record (filename=%q, type=%s)", rec.Filename, rec.TypeCode)
	}
	w.seen[rec.ID()] = true
	if w.haveLast {
		if compareRecords(*w.lastRec, rec) > 0 {
			w.diag.report(DiagOrderViolation, "record (%q, %s) is out of order after (%q, %s)",
				rec.Filename, rec.TypeCode, w.lastRec.Filename, w.lastRec.TypeCode)
		}
	}
	last := rec
	w.lastRec = &last
	w.haveLast = true
	w.records = append(w.records, rec)
	return nil
}

// visit reads and recurses into the node at blockNum, tracking depth for the
// cycle/runaway-depth guard and internal-node depth for the internal-level
// count cross-check.
func (w *btreeWalker) visit(blockNum uint32, depth int) error {
	if blockNum == 0 {
		return corruptf("child block pointer is zero")
	}
	if depth > w.maxDepth {
		return corruptf("B-tree traversal exceeded maximum depth %d", w.maxDepth)
	}
	if w.visited[blockNum] {
		return corruptf("block %d reached more than once (cycle or shared node)", blockNum)
	}
	w.visited[blockNum] = true
	w.nodes++

	off, size, err := w.alloc.blockDataOffset(blockNum)
	if err != nil {
		return err
	}
	if size > pageSize {
		return corruptf("node block %d has size %d exceeding page size %d", blockNum, size, pageSize)
	}
	if int(off)+int(size) > len(w.buf) {
		return corruptf("node block %d (offset %d, size %d) runs past end of file", blockNum, off, size)
	}
	// Reading is bounded to exactly this block's region, so any attempt to
	// read a field that runs off the end of the node fails instead of
	// silently reading into the next block.
	r := newReader(w.buf[off : off+size])

	rightmostChild, err := r.U32()
	if err != nil {
		return err
	}
	entryCount, err := r.U32()
	if err != nil {
		return err
	}

	if rightmostChild == 0 {
		// Leaf node: entryCount encoded records.
		for i := uint32(0); i < entryCount; i++ {
			rec, err := decodeRecord(r)
			if err != nil {
				return err
			}
			if err := w.emit(rec); err != nil {
				return err
			}
		}
		return nil
	}

	// Internal node.
	w.sawIntern = true
	if depth > w.maxIntern {
		w.maxIntern = depth
	}
	for i := uint32(0); i < entryCount; i++ {
		childBlock, err := r.U32()
		if err != nil {
			return err
		}
		if childBlock == 0 {
			return corruptf("internal node child pointer %d is zero", i)
		}
		saved := r.Pos()
		if err := w.visit(childBlock, depth+1); err != nil {
			return err
		}
		if err := r.Seek(saved); err != nil {
			return err
		}
		rec, err := decodeRecord(r)
		if err != nil {
			return err
		}
		if err := w.emit(rec); err != nil {
			return err
		}
	}
	return w.visit(rightmostChild, depth+1)
}
