package ext2

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Readlink returns a symlink's target. A short ("fast") symlink's target
// is packed little-endian across the inode's 15 block-pointer slots;
// anything longer lives in data blocks and is NUL-terminated at the
// first zero byte.
func (i *Inode) Readlink() ([]byte, error) {
	if !i.IsLink() {
		return nil, errors.Wrapf(ErrNotASymlink, "inode %d", i.Num)
	}

	if i.IsShortSymlink() {
		var buf bytes.Buffer
		for _, b := range i.Direct {
			binary.Write(&buf, binary.LittleEndian, b)
		}
		for _, b := range i.Indirect {
			binary.Write(&buf, binary.LittleEndian, b)
		}
		raw := buf.Bytes()
		if int(i.Size) < len(raw) {
			raw = raw[:i.Size]
		}
		if n := bytes.IndexByte(raw, 0); n >= 0 {
			raw = raw[:n]
		}
		return raw, nil
	}

	blocks, err := i.BlockList()
	if err != nil {
		return nil, errors.Wrapf(err, "ext2: reading symlink inode %d", i.Num)
	}

	var out []byte
	for _, bn := range blocks {
		buf, err := i.sb.io.readBlock(bn)
		if err != nil {
			return nil, errors.Wrapf(err, "ext2: reading symlink inode %d block", i.Num)
		}
		if n := bytes.IndexByte(buf, 0); n >= 0 {
			out = append(out, buf[:n]...)
			break
		}
		out = append(out, buf...)
		if uint32(len(out)) >= i.Size {
			break
		}
	}
	if uint32(len(out)) > i.Size {
		out = out[:i.Size]
	}
	return out, nil
}

// Readlink resolves path and returns its symlink target.
func (sb *Superblock) Readlink(path string) ([]byte, error) {
	ino, err := sb.ResolveInode(path)
	if err != nil {
		return nil, err
	}
	return ino.Readlink()
}
