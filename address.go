package dsstore

import "fmt"

// blockAddr is a packed buddy block address as stored in the allocator's
// block-address table: the low 5 bits are the size exponent p (block size
// 2^p, p >= 5), the upper 27 bits are the file offset, which must be a
// multiple of 2^p.
type blockAddr uint32

const (
	minBlockSizeLog = 5  // blocks are at least 32 bytes
	maxBlockSizeLog = 31 // largest exponent the 5-bit size field can hold
)

// encodeAddr packs offset and p (the size exponent) into a blockAddr.
// offset must be a multiple of 2^p, and 5 <= p <= 31.
func encodeAddr(offset uint32, p uint32) (blockAddr, error) {
	if p < minBlockSizeLog || p > maxBlockSizeLog {
		return 0, fmt.Errorf("dsstore: block size exponent %d out of range [%d,%d]", p, minBlockSizeLog, maxBlockSizeLog)
	}
	if offset&0x1f != 0 {
		return 0, fmt.Errorf("dsstore: block offset 0x%x is not 32-byte aligned", offset)
	}
	size := uint32(1) << p
	if offset%size != 0 {
		return 0, fmt.Errorf("dsstore: block offset 0x%x is not a multiple of block size %d", offset, size)
	}
	return blockAddr(offset | p), nil
}

// decodeAddr unpacks a blockAddr into its file offset and block size.
// It fails if the encoded exponent is below the minimum, or the decoded
// offset is not a multiple of the decoded size.
func decodeAddr(a blockAddr) (offset uint32, size uint32, err error) {
	p := uint32(a) & 0x1f
	if p < minBlockSizeLog {
		return 0, 0, fmt.Errorf("%w: size exponent %d below minimum %d", ErrInvalidBlockAddress, p, minBlockSizeLog)
	}
	offset = uint32(a) &^ 0x1f
	size = uint32(1) << p
	if offset%size != 0 {
		return 0, 0, fmt.Errorf("%w: offset 0x%x is not a multiple of decoded size %d", ErrInvalidBlockAddress, offset, size)
	}
	return offset, size, nil
}

// blockSizeLog returns the smallest p in [minBlockSizeLog, maxBlockSizeLog]
// such that 2^p >= n, or an error if n exceeds the maximum representable block.
func blockSizeLog(n int) (uint32, error) {
	p := uint32(minBlockSizeLog)
	for (uint64(1) << p) < uint64(n) {
		p++
		if p > maxBlockSizeLog {
			return 0, fmt.Errorf("dsstore: %d bytes exceeds the maximum block size 2^%d", n, maxBlockSizeLog)
		}
	}
	return p, nil
}
