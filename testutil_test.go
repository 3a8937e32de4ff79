package ext2_test

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// imageBuilder assembles a minimal, single-block-group ext2 image in
// memory, one block at a time, for use as the backing store in tests.
// It deliberately avoids any dependency on the package under test so
// test fixtures can never accidentally share a bug with the decoder.
type imageBuilder struct {
	blockSize   uint32
	blocks      [][]byte
	inodeSize   uint32
	inodesBlock uint32 // first block of the inode table
	inodeCount  uint32
}

func newImageBuilder(blockSize uint32, totalBlocks int) *imageBuilder {
	b := &imageBuilder{blockSize: blockSize, inodeSize: 128}
	b.blocks = make([][]byte, totalBlocks)
	for i := range b.blocks {
		b.blocks[i] = make([]byte, blockSize)
	}
	return b
}

func (b *imageBuilder) block(n uint32) []byte {
	return b.blocks[n]
}

func putU32(buf []byte, off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }
func putU16(buf []byte, off int, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }

// writeSuperblock fills block 1 (byte offset 1024) with a valid rev-0
// superblock for a filesystem with a single block group.
func (b *imageBuilder) writeSuperblock(inodesCount, blocksCount, blocksPerGroup, inodesPerGroup uint32) {
	sb := make([]byte, 1024)

	putU32(sb, 0, inodesCount)
	putU32(sb, 4, blocksCount)
	putU32(sb, 8, 0) // r_blocks_count
	putU32(sb, 12, blocksCount-8)
	putU32(sb, 16, inodesCount-4)
	putU32(sb, 20, 1) // first_data_block (1KB blocks)
	logBlockSize := uint32(0)
	for sz := uint32(1024); sz < b.blockSize; sz <<= 1 {
		logBlockSize++
	}
	putU32(sb, 24, logBlockSize)
	putU32(sb, 28, logBlockSize) // log_frag_size
	putU32(sb, 32, blocksPerGroup)
	putU32(sb, 36, blocksPerGroup) // frags_per_group
	putU32(sb, 40, inodesPerGroup)
	putU32(sb, 44, 0) // mtime
	putU32(sb, 48, 0) // wtime

	putU16(sb, 52, 0) // mnt_count
	putU16(sb, 54, 20)
	putU16(sb, 56, 0xEF53) // magic
	putU16(sb, 58, 1)      // state: clean
	putU16(sb, 60, 1)      // errors: continue
	putU16(sb, 62, 0)      // minor_rev_level

	putU32(sb, 64, 0) // last_check
	putU32(sb, 68, 0) // check_interval
	putU32(sb, 72, 0) // creator_os
	putU32(sb, 76, 0) // rev_level: 0 (good old rev)

	putU16(sb, 80, 0) // def_resuid
	putU16(sb, 82, 0) // def_resgid

	id := uuid.New()
	raw, _ := id.MarshalBinary()
	copy(sb[104:120], raw)
	copy(sb[120:136], []byte("testlabel"))

	b.blocks[1] = sb
	b.inodeCount = inodesCount
}

// writeGroupDescriptor fills the descriptor table block (block 2 for
// 1KB block size) with a single group descriptor pointing at the given
// bitmap and inode table blocks.
func (b *imageBuilder) writeGroupDescriptor(blockBitmap, inodeBitmap, inodeTable uint32) {
	gd := b.block(2)
	putU32(gd, 0, blockBitmap)
	putU32(gd, 4, inodeBitmap)
	putU32(gd, 8, inodeTable)
	putU16(gd, 12, 0) // free_blocks_count
	putU16(gd, 14, 0) // free_inodes_count
	putU16(gd, 16, 0) // used_dirs_count
	b.inodesBlock = inodeTable
}

// rawInode is the set of fields a test needs to control; everything
// else in the 128-byte record is left zero.
type rawInode struct {
	mode       uint16
	uid        uint16
	size       uint32
	linksCount uint16
	gid        uint16
	direct     [12]uint32
	indirect   [3]uint32
}

// writeInode encodes ri into the inode table slot for a 1-based inode
// number (root is always 2).
func (b *imageBuilder) writeInode(num uint32, ri rawInode) {
	slot := num - 1
	offset := slot * b.inodeSize
	blockIdx := b.inodesBlock + offset/b.blockSize
	inBlock := offset % b.blockSize

	buf := b.block(blockIdx)
	rec := buf[inBlock : inBlock+b.inodeSize]

	putU16(rec, 0, ri.mode)
	putU16(rec, 2, ri.uid)
	putU32(rec, 4, ri.size)
	putU32(rec, 8, 0)  // atime
	putU32(rec, 12, 0) // ctime
	putU32(rec, 16, 0) // mtime
	putU32(rec, 20, 0) // dtime
	putU16(rec, 24, ri.gid)
	putU16(rec, 26, ri.linksCount)
	putU32(rec, 28, 0) // blocks (512-byte sectors)
	putU32(rec, 32, 0) // flags
	putU32(rec, 36, 0) // osd1

	for i, d := range ri.direct {
		putU32(rec, 40+i*4, d)
	}
	for i, ind := range ri.indirect {
		putU32(rec, 40+12*4+i*4, ind)
	}
}

// dirent is one directory entry to be packed by writeDirBlock.
type dirent struct {
	inode    uint32
	fileType uint8
	name     string
}

// writeDirBlock packs entries into block n, with the final entry's
// rec_len extended to the end of the block exactly as a real ext2
// directory block is laid out.
func (b *imageBuilder) writeDirBlock(n uint32, entries []dirent) {
	buf := b.block(n)
	pos := 0
	for idx, e := range entries {
		recLen := 8 + len(e.name)
		recLen = (recLen + 3) &^ 3 // 4-byte align
		if idx == len(entries)-1 {
			recLen = len(buf) - pos
		}
		putU32(buf, pos, e.inode)
		putU16(buf, pos+4, uint16(recLen))
		buf[pos+6] = byte(len(e.name))
		buf[pos+7] = e.fileType
		copy(buf[pos+8:], e.name)
		pos += recLen
	}
}

// writeFileBlock copies data into block n, zero-padding the remainder.
func (b *imageBuilder) writeFileBlock(n uint32, data []byte) {
	buf := b.block(n)
	copy(buf, data)
}

// reader returns the assembled image as an io.ReaderAt-compatible
// *bytes.Reader.
func (b *imageBuilder) reader() *bytes.Reader {
	var out bytes.Buffer
	for _, blk := range b.blocks {
		out.Write(blk)
	}
	return bytes.NewReader(out.Bytes())
}

const (
	modeRegular   = 0x8000 | 0644
	modeDirectory = 0x4000 | 0755
	modeSymlink   = 0xa000 | 0777
)
