package ext2

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const groupDescriptorSize = 32

// GroupDescriptor locates one block group's bitmaps and inode table.
// All three fields are absolute block numbers.
type GroupDescriptor struct {
	BlockBitmap     uint32
	InodeBitmap     uint32
	InodeTable      uint32
	FreeBlocksCount uint16
	FreeInodesCount uint16
	UsedDirsCount   uint16

	start, end uint32 // [start, end) block range owned by this group
}

// readGroupDescriptors reads the contiguous descriptor table starting at
// the block immediately after the superblock's containing block, and
// self-checks every descriptor's bitmap/table pointers against its
// group's range.
func (sb *Superblock) readGroupDescriptors() ([]GroupDescriptor, error) {
	count := sb.BlocksCount / sb.BlocksPerGroup
	if sb.BlocksCount%sb.BlocksPerGroup != 0 {
		count++
	}

	base := int64(sb.FirstDataBlock+1) * int64(sb.BlockSize)
	buf, err := sb.io.readAt(base, int(count)*groupDescriptorSize)
	if err != nil {
		return nil, errors.Wrap(err, "ext2: reading group descriptor table")
	}

	groups := make([]GroupDescriptor, count)
	for i := range groups {
		g := &groups[i]
		rec := buf[i*groupDescriptorSize : (i+1)*groupDescriptorSize]

		g.BlockBitmap = binary.LittleEndian.Uint32(rec[0:4])
		g.InodeBitmap = binary.LittleEndian.Uint32(rec[4:8])
		g.InodeTable = binary.LittleEndian.Uint32(rec[8:12])
		g.FreeBlocksCount = binary.LittleEndian.Uint16(rec[12:14])
		g.FreeInodesCount = binary.LittleEndian.Uint16(rec[14:16])
		g.UsedDirsCount = binary.LittleEndian.Uint16(rec[16:18])

		g.start = sb.FirstDataBlock + uint32(i)*sb.BlocksPerGroup
		g.end = g.start + sb.BlocksPerGroup

		if err := g.check(i); err != nil {
			return nil, err
		}
	}

	sb.log.WithField("groups", count).Debug("ext2: group descriptor table decoded")
	return groups, nil
}

func (g *GroupDescriptor) check(index int) error {
	if err := g.checkRange(g.BlockBitmap, "block_bitmap"); err != nil {
		return errors.Wrapf(err, "group %d", index)
	}
	if err := g.checkRange(g.InodeBitmap, "inode_bitmap"); err != nil {
		return errors.Wrapf(err, "group %d", index)
	}
	if err := g.checkRange(g.InodeTable, "inode_table"); err != nil {
		return errors.Wrapf(err, "group %d", index)
	}
	return nil
}

func (g *GroupDescriptor) checkRange(x uint32, what string) error {
	if x < g.start || x >= g.end {
		return errors.Wrapf(ErrCorruptGroupDescriptor, "%s block %d outside [%d,%d)", what, x, g.start, g.end)
	}
	return nil
}

// group looks up the descriptor for a 0-based group index.
func (sb *Superblock) group(index uint32) (*GroupDescriptor, error) {
	if index >= uint32(len(sb.groups)) {
		return nil, errors.Wrapf(ErrNoSuchInode, "group %d out of range (have %d)", index, len(sb.groups))
	}
	return &sb.groups[index], nil
}
