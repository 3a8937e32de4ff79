package ext2

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// direntHeaderSize is the fixed portion of a directory entry: u32 inode,
// u16 rec_len, u8 name_len, u8 file_type.
const direntHeaderSize = 8

// DirEntry is one directory-entry record: an inode number paired with a
// name and a file-type hint.
type DirEntry struct {
	Inode    uint32
	FileType uint8
	Name     string
}

// IsDir reports whether the entry's file_type hint names a directory.
func (e DirEntry) IsDir() bool {
	return e.FileType == 2
}

// ReadDir decodes the full list of directory entries for a directory
// inode. Every data block the inode owns is walked until inode.Size
// bytes are consumed. Entries never cross a block boundary: each
// block's stream is walked independently and the last entry's rec_len
// always extends to the end of its block.
func (i *Inode) ReadDir() ([]DirEntry, error) {
	if !i.IsDir() {
		return nil, errors.Wrapf(ErrNotADirectory, "inode %d", i.Num)
	}

	blocks, err := i.BlockList()
	if err != nil {
		return nil, errors.Wrapf(err, "ext2: directory inode %d", i.Num)
	}

	blockSize := i.sb.BlockSize
	nBlocks := int((uint64(i.Size) + uint64(blockSize) - 1) / uint64(blockSize))
	if nBlocks > len(blocks) {
		nBlocks = len(blocks)
	}

	var entries []DirEntry
	for _, bn := range blocks[:nBlocks] {
		buf, err := i.sb.io.readBlock(bn)
		if err != nil {
			return nil, errors.Wrapf(err, "ext2: directory inode %d block %d", i.Num, bn)
		}

		block, err := decodeDirBlock(buf)
		if err != nil {
			return nil, errors.Wrapf(err, "ext2: directory inode %d", i.Num)
		}
		entries = append(entries, block...)
	}

	return entries, nil
}

func decodeDirBlock(buf []byte) ([]DirEntry, error) {
	var entries []DirEntry
	blockSize := len(buf)

	c := 0
	for c < blockSize {
		if c+direntHeaderSize > blockSize {
			return nil, errors.Wrap(ErrCorruptDirectory, "truncated entry header at end of block")
		}

		inodeNum := binary.LittleEndian.Uint32(buf[c : c+4])
		recLen := binary.LittleEndian.Uint16(buf[c+4 : c+6])
		nameLen := buf[c+6]
		fileType := buf[c+7]

		if recLen < direntHeaderSize {
			return nil, errors.Wrapf(ErrCorruptDirectory, "entry_size %d below minimum 8 at offset %d", recLen, c)
		}
		if c+int(recLen) > blockSize {
			return nil, errors.Wrapf(ErrCorruptDirectory, "entry_size %d overruns block at offset %d", recLen, c)
		}

		if inodeNum != 0 {
			nameEnd := c + direntHeaderSize + int(nameLen)
			if nameEnd > blockSize {
				return nil, errors.Wrap(ErrCorruptDirectory, "name overruns block")
			}
			if _, ok := fileTypeMode(fileType); !ok && fileType != 0 {
				return nil, errors.Wrapf(ErrCorruptDirectory, "invalid file_type %d", fileType)
			}

			name := string(buf[c+direntHeaderSize : nameEnd])
			entries = append(entries, DirEntry{
				Inode:    inodeNum,
				FileType: fileType,
				Name:     name,
			})
		}

		c += int(recLen)
	}

	return entries, nil
}

// Lookup performs a linear, first-match scan for name among this
// directory's entries.
func (i *Inode) Lookup(name string) (DirEntry, error) {
	entries, err := i.ReadDir()
	if err != nil {
		return DirEntry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return DirEntry{}, errors.Wrapf(ErrNoEntry, "%q", name)
}
