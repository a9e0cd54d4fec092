package dsstore

import "fmt"

// btreeNode is one node of the in-memory tree being bulk-loaded, addressed by
// its index into builder.arena. This mirrors the teacher's writerInode arena
// in writer.go (a slice of pointers addressed by index) rather than a
// pointer-linked tree, avoiding aliasing headaches during splits (§9).
type btreeNode struct {
	leaf bool
	// recs and sizes are parallel: sizes[i] is recs[i]'s encoded size,
	// excluding the per-entry overhead (0 for leaves, 4 for internal).
	recs  []Record
	sizes []int
	// children has len(recs)+1 entries for an internal node: children[i] is
	// the left child of recs[i], and children[len(recs)] is the rightmost
	// child. Unused (nil) for a leaf.
	children []int
}

func (n *btreeNode) entryOverhead() int {
	if n.leaf {
		return 0
	}
	return 4
}

// serializedSize computes size = 8 + sum(recSize_i + overhead), per §4.6.
func (n *btreeNode) serializedSize() int {
	overhead := n.entryOverhead()
	total := 8
	for _, s := range n.sizes {
		total += s + overhead
	}
	return total
}

// btreeBuilder bulk-loads a sorted, already-encoded record sequence into a
// page-bounded B-tree via right-spine insertion (§4.6, §9).
type btreeBuilder struct {
	arena    []*btreeNode
	rootIdx  int
	spine    []int // root..rightmost-leaf chain of arena indices
	pageSize int
}

func newBTreeBuilder(pageSize int) *btreeBuilder {
	b := &btreeBuilder{pageSize: pageSize}
	rootIdx := b.newNode(&btreeNode{leaf: true})
	b.rootIdx = rootIdx
	b.spine = []int{rootIdx}
	return b
}

func (b *btreeBuilder) newNode(n *btreeNode) int {
	b.arena = append(b.arena, n)
	return len(b.arena) - 1
}

// insert appends rec (already known to be next in sorted order) to the
// rightmost leaf, splitting up the right spine as needed.
func (b *btreeBuilder) insert(rec Record) error {
	size, err := rec.encodedSize()
	if err != nil {
		return err
	}
	if size+8 > b.pageSize {
		return fmt.Errorf("dsstore: record (filename=%q, type=%s) of %d bytes cannot fit in a %d-byte page even alone", rec.Filename, rec.TypeCode, size, b.pageSize)
	}

	leafLevel := len(b.spine) - 1
	leafIdx := b.spine[leafLevel]
	leaf := b.arena[leafIdx]
	leaf.recs = append(leaf.recs, rec)
	leaf.sizes = append(leaf.sizes, size)

	return b.splitIfNeeded(leafLevel)
}

// splitIfNeeded checks the node at spine[level] and, if it overflows the
// page budget, splits it and propagates the promoted record up to the
// parent (or creates a new root if level is 0), per §4.6.
func (b *btreeBuilder) splitIfNeeded(level int) error {
	idx := b.spine[level]
	node := b.arena[idx]
	if node.serializedSize() <= b.pageSize {
		return nil
	}

	sep, err := chooseSplit(node, b.pageSize)
	if err != nil {
		return err
	}

	promoted := node.recs[sep]
	promotedSize := node.sizes[sep]

	right := &btreeNode{leaf: node.leaf}
	right.recs = append([]Record{}, node.recs[sep+1:]...)
	right.sizes = append([]int{}, node.sizes[sep+1:]...)
	if !node.leaf {
		right.children = append([]int{}, node.children[sep+1:]...)
	}

	node.recs = node.recs[:sep]
	node.sizes = node.sizes[:sep]
	if !node.leaf {
		node.children = node.children[:sep+1]
	}

	rightIdx := b.newNode(right)
	b.spine[level] = rightIdx

	if level == 0 {
		root := &btreeNode{
			leaf:     false,
			recs:     []Record{promoted},
			sizes:    []int{promotedSize},
			children: []int{idx, rightIdx},
		}
		rootIdx := b.newNode(root)
		b.rootIdx = rootIdx
		b.spine = append([]int{rootIdx}, b.spine...)
		return nil
	}

	parent := b.arena[b.spine[level-1]]
	parent.recs = append(parent.recs, promoted)
	parent.sizes = append(parent.sizes, promotedSize)
	parent.children = append(parent.children, rightIdx)

	return b.splitIfNeeded(level - 1)
}

// chooseSplit picks the separator index minimizing |leftSize - rightSize|
// subject to both halves fitting within pageSize, preferring both halves
// non-empty; it falls back to an empty side if no non-empty split fits, and
// fails with "unable to split" if no split at all fits.
func chooseSplit(node *btreeNode, pageSize int) (int, error) {
	n := len(node.recs)
	overhead := node.entryOverhead()

	prefix := make([]int, n+1)
	for i, s := range node.sizes {
		prefix[i+1] = prefix[i] + s + overhead
	}
	total := prefix[n]

	bestSep := -1
	bestDiff := -1
	bestNonEmpty := false

	for sep := 0; sep < n; sep++ {
		leftSize := 8 + prefix[sep]
		rightSize := 8 + (total - prefix[sep+1])
		if leftSize > pageSize || rightSize > pageSize {
			continue
		}
		nonEmpty := sep > 0 && sep < n-1
		diff := leftSize - rightSize
		if diff < 0 {
			diff = -diff
		}
		if bestSep == -1 || (nonEmpty && !bestNonEmpty) || (nonEmpty == bestNonEmpty && diff < bestDiff) {
			bestSep = sep
			bestDiff = diff
			bestNonEmpty = nonEmpty
		}
	}

	if bestSep == -1 {
		return 0, fmt.Errorf("dsstore: unable to split B-tree node: no separator keeps both halves within the page budget")
	}
	return bestSep, nil
}

// finish returns the finished arena and root index after all records have
// been inserted.
func (b *btreeBuilder) finish() ([]*btreeNode, int) {
	return b.arena, b.rootIdx
}
