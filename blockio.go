package ext2

import (
	"io"

	"github.com/pkg/errors"
)

// blockIO wraps the image file (or block device) and provides the
// block-aligned and absolute-offset reads every decoder in this package
// is built on. Every read is absolute: there is no ambient seek cursor,
// so a single blockIO can be shared across concurrent callbacks as long
// as the underlying io.ReaderAt itself tolerates concurrent ReadAt calls
// (true of *os.File; see Superblock.Close for the shutdown path).
type blockIO struct {
	r         io.ReaderAt
	blockSize uint32
}

func newBlockIO(r io.ReaderAt) *blockIO {
	return &blockIO{r: r}
}

// setBlockSize is called exactly once, by the superblock decoder, right
// after s_log_block_size is known.
func (b *blockIO) setBlockSize(sz uint32) {
	b.blockSize = sz
}

// readAt reads count bytes at the given absolute offset. A short read is
// reported as ErrTruncatedRead rather than silently returning a partial
// buffer, since every caller in this package assumes a full buffer on
// success.
func (b *blockIO) readAt(offset int64, count int) ([]byte, error) {
	buf := make([]byte, count)
	n, err := b.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "ext2: read %d bytes at offset %d", count, offset)
	}
	if n != count {
		return nil, errors.Wrapf(ErrTruncatedRead, "wanted %d bytes at offset %d, got %d", count, offset, n)
	}
	return buf, nil
}

// readBlock reads the block with the given absolute block number, whose
// length is always the filesystem's block size.
func (b *blockIO) readBlock(n uint64) ([]byte, error) {
	return b.readAt(int64(n)*int64(b.blockSize), int(b.blockSize))
}

// close releases the backing store if it supports io.Closer. Plain
// io.ReaderAt values (e.g. bytes.Reader in tests) are left untouched.
func (b *blockIO) close() error {
	if c, ok := b.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
