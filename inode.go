package ext2

import (
	"bytes"
	"encoding/binary"
	"io/fs"

	"github.com/pkg/errors"
)

const (
	directBlocks = 12 // db[0..11]
)

// Inode is a materialised ext2 inode record: mode, ownership, timestamps,
// size, link count and the 15 block-pointer slots. It is rebuilt fresh on
// every lookup; nothing caches it.
type Inode struct {
	sb *Superblock

	Num uint32 // 1-based inode number this record was read for

	Mode       uint16
	UID        uint16
	Size       uint32
	Atime      uint32
	Ctime      uint32
	Mtime      uint32
	Dtime      uint32
	GID        uint16
	LinksCount uint16
	BlocksRaw  uint32 // 512-byte sector count, on-disk bookkeeping field
	Flags      uint32

	Direct   [directBlocks]uint32
	Indirect [3]uint32 // single, double, triple
}

// GetInode reads the inode with the given 1-based inode number.
func (sb *Superblock) GetInode(num uint32) (*Inode, error) {
	if num == 0 || num > sb.InodesCount {
		return nil, errors.Wrapf(ErrNoSuchInode, "inode %d", num)
	}

	groupIdx := (num - 1) / sb.InodesPerGroup
	slot := (num - 1) % sb.InodesPerGroup

	g, err := sb.group(groupIdx)
	if err != nil {
		return nil, errors.Wrapf(err, "inode %d", num)
	}

	offset := int64(g.InodeTable)*int64(sb.BlockSize) + int64(slot)*int64(sb.InodeSize)
	buf, err := sb.io.readAt(offset, 128)
	if err != nil {
		return nil, errors.Wrapf(err, "ext2: reading inode %d", num)
	}

	ino := &Inode{sb: sb, Num: num}
	r := bytes.NewReader(buf)
	var osd1 uint32
	fields := []interface{}{
		&ino.Mode, &ino.UID,
		&ino.Size, &ino.Atime, &ino.Ctime, &ino.Mtime, &ino.Dtime,
		&ino.GID, &ino.LinksCount,
		&ino.BlocksRaw, &ino.Flags, &osd1,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, errors.Wrapf(err, "ext2: decoding inode %d", num)
		}
	}
	for i := range ino.Direct {
		if err := binary.Read(r, binary.LittleEndian, &ino.Direct[i]); err != nil {
			return nil, errors.Wrapf(err, "ext2: decoding inode %d direct block %d", num, i)
		}
	}
	for i := range ino.Indirect {
		if err := binary.Read(r, binary.LittleEndian, &ino.Indirect[i]); err != nil {
			return nil, errors.Wrapf(err, "ext2: decoding inode %d indirect block %d", num, i)
		}
	}

	sb.log.WithFields(map[string]interface{}{
		"inode": num, "mode": ino.Mode, "size": ino.Size,
	}).Trace("ext2: inode decoded")

	return ino, nil
}

// IsDir reports whether the inode is a directory.
func (i *Inode) IsDir() bool {
	return i.Mode&S_IFMT == S_IFDIR
}

// IsLink reports whether the inode is a symbolic link.
func (i *Inode) IsLink() bool {
	return i.Mode&S_IFMT == S_IFLNK
}

// IsDevice reports whether the inode is a character or block device.
func (i *Inode) IsDevice() bool {
	return i.Mode&S_IFMT == S_IFCHR || i.Mode&S_IFMT == S_IFBLK
}

// IsShortSymlink reports whether this symlink stores its target directly
// in the 15 block-pointer slots rather than in a data block.
func (i *Inode) IsShortSymlink() bool {
	return i.IsLink() && i.Size <= 4*15
}

// FileMode returns the standard library's fs.FileMode for this inode's
// type and permission bits.
func (i *Inode) FileMode() fs.FileMode {
	return UnixToMode(uint32(i.Mode))
}

// DeviceNumbers returns the (major, minor) pair for a device inode,
// decoded from db[0] the way original_source/ext2.py's device_id() does.
func (i *Inode) DeviceNumbers() (major, minor uint32) {
	dev := i.Direct[0]
	return (dev >> 8) & 0xfff, (dev & 0xff) | ((dev >> 12) & 0xfff00)
}
