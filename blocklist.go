package ext2

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// BlockList flattens an inode's direct, single-, double- and
// triple-indirect pointer tree into the ordered sequence of absolute
// block numbers that make up its data. Short symlinks never call this:
// their target lives directly in the 15 pointer slots.
func (i *Inode) BlockList() ([]uint64, error) {
	var blocks []uint64

	for _, b := range i.Direct {
		if b == 0 {
			return blocks, nil
		}
		blocks = append(blocks, uint64(b))
	}

	if i.Indirect[0] == 0 {
		return blocks, nil
	}
	single, err := i.sb.readIndirectList(i.Indirect[0])
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, single...)
	if len(single) < i.sb.pointersPerBlock() {
		return blocks, nil
	}

	if i.Indirect[1] == 0 {
		return blocks, nil
	}
	double, err := i.sb.readDoubleIndirectList(i.Indirect[1])
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, double...)
	if len(double) < i.sb.pointersPerBlock()*i.sb.pointersPerBlock() {
		return blocks, nil
	}

	if i.Indirect[2] == 0 {
		return blocks, nil
	}
	triple, err := i.sb.readTripleIndirectList(i.Indirect[2])
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, triple...)

	return blocks, nil
}

// pointersPerBlock is the number of little-endian u32 block pointers that
// fit in one block.
func (sb *Superblock) pointersPerBlock() int {
	return int(sb.BlockSize / 4)
}

// readPointerBlock reads block n as a list of little-endian u32 block
// numbers, stopping at (and excluding) the first zero entry.
func (sb *Superblock) readPointerBlock(n uint32) ([]uint32, error) {
	buf, err := sb.io.readBlock(uint64(n))
	if err != nil {
		return nil, errors.Wrapf(err, "ext2: reading indirect block %d", n)
	}

	ptrs := make([]uint32, 0, sb.pointersPerBlock())
	for off := 0; off+4 <= len(buf); off += 4 {
		v := binary.LittleEndian.Uint32(buf[off : off+4])
		if v == 0 {
			break
		}
		ptrs = append(ptrs, v)
	}
	return ptrs, nil
}

// readIndirectList expands one level of single indirection: block n is a
// table of direct block numbers.
func (sb *Superblock) readIndirectList(n uint32) ([]uint64, error) {
	ptrs, err := sb.readPointerBlock(n)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(ptrs))
	for i, p := range ptrs {
		out[i] = uint64(p)
	}
	return out, nil
}

// readDoubleIndirectList expands double indirection: block n is a table
// of single-indirect block numbers, each itself expanded.
func (sb *Superblock) readDoubleIndirectList(n uint32) ([]uint64, error) {
	ptrs, err := sb.readPointerBlock(n)
	if err != nil {
		return nil, err
	}

	var out []uint64
	for _, p := range ptrs {
		single, err := sb.readIndirectList(p)
		if err != nil {
			return nil, err
		}
		out = append(out, single...)
		if len(single) < sb.pointersPerBlock() {
			break
		}
	}
	return out, nil
}

// readTripleIndirectList expands triple indirection: block n is a table
// of double-indirect block numbers, each itself expanded (triple →
// indirect-of-double-indirect).
func (sb *Superblock) readTripleIndirectList(n uint32) ([]uint64, error) {
	ptrs, err := sb.readPointerBlock(n)
	if err != nil {
		return nil, err
	}

	var out []uint64
	for _, p := range ptrs {
		double, err := sb.readDoubleIndirectList(p)
		if err != nil {
			return nil, err
		}
		out = append(out, double...)
		if len(double) < sb.pointersPerBlock()*sb.pointersPerBlock() {
			break
		}
	}
	return out, nil
}
