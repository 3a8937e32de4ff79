package ext2

import (
	"io"

	"github.com/pkg/errors"
)

// ReadRange maps (offset, length) onto the inode's block list and
// concatenates head/middle/tail slices into a single buffer. It never
// reads past inode.Size; bytes past EOF are never returned. A length of
// 0 or fewer, or a negative offset, yields an empty result.
func (i *Inode) ReadRange(offset int64, length int) ([]byte, error) {
	if length <= 0 || offset < 0 {
		return []byte{}, nil
	}

	end := offset + int64(length)
	if end > int64(i.Size) {
		end = int64(i.Size)
	}
	if end <= offset {
		return []byte{}, nil
	}

	blockSize := int64(i.sb.BlockSize)
	firstBlock := offset / blockSize
	lastBlock := (end - 1) / blockSize

	blocks, err := i.BlockList()
	if err != nil {
		return nil, errors.Wrapf(err, "ext2: reading inode %d", i.Num)
	}

	out := make([]byte, 0, end-offset)
	for fb := firstBlock; fb <= lastBlock; fb++ {
		if fb >= int64(len(blocks)) {
			return nil, errors.Wrapf(ErrTruncatedRead, "inode %d missing block for file offset %d", i.Num, fb*blockSize)
		}

		buf, err := i.sb.io.readBlock(blocks[fb])
		if err != nil {
			return nil, errors.Wrapf(err, "ext2: reading inode %d data block", i.Num)
		}

		start := 0
		if fb == firstBlock {
			start = int(offset % blockSize)
		}
		stop := len(buf)
		if fb == lastBlock {
			stop = int((end-1)%blockSize) + 1
		}
		out = append(out, buf[start:stop]...)
	}

	return out, nil
}

// ReadAt implements io.ReaderAt over the inode's data, so an *Inode can
// back an io.SectionReader (see fileHandle in file.go).
func (i *Inode) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(i.Size) {
		return 0, io.EOF
	}
	buf, err := i.ReadRange(off, len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, buf)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Read resolves path and reads length bytes starting at offset. Empty
// result for length <= 0 or offset < 0, same as ReadRange.
func (sb *Superblock) Read(path string, offset int64, length int) ([]byte, error) {
	ino, err := sb.ResolveInode(path)
	if err != nil {
		return nil, err
	}
	return ino.ReadRange(offset, length)
}
