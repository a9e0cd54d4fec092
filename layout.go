package dsstore

// nodePlacement records the block number and the on-disk layout details
// assigned to one B-tree node (arena index) by the layout planner.
type nodePlacement struct {
	blockNum  uint32
	offset    uint32 // data offset (raw address, pre "+4" adjustment)
	blockSize uint32 // power of two
}

// layoutPlan is the output of the layout planner (C7): file offsets for the
// root metadata block, every B-tree node, and the allocator block, plus the
// allocated-range list the free-list builder (C8) needs.
type layoutPlan struct {
	rootMetaOffset uint32 // always 0x20
	rootMetaSize   uint32 // always 32

	nodeOrder  []int // arena indices in block-numbering (traversal) order
	nodeBlock  map[int]uint32
	nodePlace  map[int]nodePlacement

	allocatorOffset     uint32
	allocatorP          uint32
	blockCount          uint32
	allocatorSerialized []byte

	fileEnd uint32

	blockAddresses []blockAddr // final table, index == block number
}

const rootMetaOffset = 0x20
const rootMetaSize = 32
const headerReservationEnd = rootMetaOffset // the 0x20-byte header reservation

// traversalOrder lists arena indices in the same depth-first, left-to-right
// order the reader visits nodes (each node before its children), which is
// also the order block numbers are handed out in.
func traversalOrder(arena []*btreeNode, rootIdx int) []int {
	var order []int
	var visit func(idx int)
	visit = func(idx int) {
		order = append(order, idx)
		n := arena[idx]
		if n.leaf {
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(rootIdx)
	return order
}

// encodeNode serializes one node's bytes (rightmostChild, entryCount, then
// entries), given each arena index's already-assigned block number.
func encodeNode(n *btreeNode, blockOf map[int]uint32) ([]byte, error) {
	w := newWriter()
	if n.leaf {
		w.WriteU32(0)
	} else {
		w.WriteU32(blockOf[n.children[len(n.children)-1]])
	}
	w.WriteU32(uint32(len(n.recs)))

	if n.leaf {
		for _, rec := range n.recs {
			if err := encodeRecord(w, rec); err != nil {
				return nil, err
			}
		}
		return w.Bytes(), nil
	}

	for i, rec := range n.recs {
		w.WriteU32(blockOf[n.children[i]])
		if err := encodeRecord(w, rec); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// planLayout assigns block numbers and file offsets to every B-tree node,
// then sizes and places the allocator block, per §4.7.
func planLayout(arena []*btreeNode, rootIdx int, cfgPageSize uint32) (*layoutPlan, map[int][]byte, error) {
	order := traversalOrder(arena, rootIdx)

	blockOf := make(map[int]uint32, len(order))
	for i, idx := range order {
		blockOf[idx] = uint32(i + 2) // block 1 is the root metadata block
	}

	encoded := make(map[int][]byte, len(order))
	for _, idx := range order {
		b, err := encodeNode(arena[idx], blockOf)
		if err != nil {
			return nil, nil, err
		}
		if len(b) > int(cfgPageSize) {
			return nil, nil, corruptf("encoded node is %d bytes, exceeding the page size %d", len(b), cfgPageSize)
		}
		encoded[idx] = b
	}

	// Each block is the smallest power of two that holds the node's encoded
	// bytes. Every block's data sits 4 bytes past its address (§6), the same
	// shift for every block, so a node that fills its block exactly still
	// ends where the next block's data begins, and no node block ever
	// exceeds the page size.
	place := make(map[int]nodePlacement, len(order))
	offset := uint32(rootMetaOffset + rootMetaSize)
	for _, idx := range order {
		b := encoded[idx]
		p, err := blockSizeLog(len(b))
		if err != nil {
			return nil, nil, err
		}
		blockSz := uint32(1) << p
		offset = roundUpPow2(offset, blockSz)
		place[idx] = nodePlacement{blockNum: blockOf[idx], offset: offset, blockSize: blockSz}
		offset += blockSz
	}

	fileEndBeforeAllocator := offset

	maxBlockNum := uint32(1)
	for _, idx := range order {
		if blockOf[idx] > maxBlockNum {
			maxBlockNum = blockOf[idx]
		}
	}
	blockCount := maxBlockNum + 1
	tableLen := roundUp256(blockCount)
	blockAddresses := make([]blockAddr, tableLen)

	rootAddr, err := encodeAddr(rootMetaOffset, 5)
	if err != nil {
		return nil, nil, err
	}
	blockAddresses[1] = rootAddr
	for _, idx := range order {
		p, err := blockSizeLog(len(encoded[idx]))
		if err != nil {
			return nil, nil, err
		}
		addr, err := encodeAddr(place[idx].offset, p)
		if err != nil {
			return nil, nil, err
		}
		blockAddresses[blockOf[idx]] = addr
	}

	plan := &layoutPlan{
		rootMetaOffset: rootMetaOffset,
		rootMetaSize:   rootMetaSize,
		nodeOrder:      order,
		nodeBlock:      blockOf,
		nodePlace:      place,
		blockAddresses: blockAddresses,
		blockCount:     blockCount,
	}

	toc := map[string]uint32{"DSDB": 1}
	tocNames := []string{"DSDB"}

	for p := uint32(12); p <= maxBlockSizeLog; p++ {
		allocatorDataOffset := roundUpPow2(fileEndBeforeAllocator, 1<<p)
		selfAddr, err := encodeAddr(allocatorDataOffset, p)
		if err != nil {
			return nil, nil, err
		}
		blockAddresses[0] = selfAddr

		allocatorBlockSize := uint32(1) << p
		fileEnd := allocatorDataOffset + allocatorBlockSize

		allocated := make([]allocRange, 0, len(order)+2)
		allocated = append(allocated, allocRange{offset: 0, size: rootMetaOffset})
		allocated = append(allocated, allocRange{offset: rootMetaOffset, size: rootMetaSize})
		for _, idx := range order {
			pl := place[idx]
			allocated = append(allocated, allocRange{offset: pl.offset, size: pl.blockSize})
		}
		allocated = append(allocated, allocRange{offset: allocatorDataOffset, size: allocatorBlockSize})

		freeLists, flErr := buildFreeLists(allocated, fileEnd)
		if flErr != nil {
			return nil, nil, flErr
		}

		a := &allocatorState{
			blockCount:     blockCount,
			blockAddresses: blockAddresses,
			tocNames:       tocNames,
			toc:            toc,
			freeLists:      freeLists,
		}
		serialized := encodeAllocator(a)
		// The allocator's data sits 4 bytes past its address (§6) and the
		// file ends at fileEnd, so its serialized bytes must fit within
		// 1<<p - 4 bytes.
		if len(serialized)+4 <= int(1<<p) {
			plan.allocatorOffset = allocatorDataOffset + 4
			plan.allocatorP = p
			plan.fileEnd = fileEnd
			plan.blockAddresses = blockAddresses
			plan.allocatorSerialized = serialized
			return plan, encoded, nil
		}
	}

	return nil, nil, corruptf("allocator metadata too large to fit within the maximum block size")
}

// roundUpPow2 rounds off up to the next multiple of size (size must be a power of two).
func roundUpPow2(off uint32, size uint32) uint32 {
	mask := size - 1
	return (off + mask) &^ mask
}
