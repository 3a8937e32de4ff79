package ext2

import (
	"io"
	"io/fs"
	"time"
)

// Attr is the subset of inode metadata the getattr callback publishes.
type Attr struct {
	Ino   uint64
	Mode  fs.FileMode
	Nlink uint32
	UID   uint32
	GID   uint32
	Size  uint64
	Atime time.Time
	Ctime time.Time
	Mtime time.Time
	Dev   uint64 // major/minor for device inodes, 0 otherwise
}

// StatfsResult mirrors the POSIX statvfs fields the callback surface
// reports.
type StatfsResult struct {
	Bsize   uint32
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Namemax uint32
}

// Getattr resolves path and returns its attributes. The caller's uid/gid
// replace the on-disk owner when WithUser was passed at mount time.
func (sb *Superblock) Getattr(path string) (Attr, error) {
	ent, err := sb.ResolveEntry(path)
	if err != nil {
		return Attr{}, err
	}
	ino, err := sb.GetInode(ent.Inode)
	if err != nil {
		return Attr{}, err
	}

	uid, gid := uint32(ino.UID), uint32(ino.GID)
	if sb.getuid != nil {
		uid, gid = sb.getuid()
	}

	var dev uint64
	if ino.IsDevice() {
		major, minor := ino.DeviceNumbers()
		dev = uint64(major)<<8 | uint64(minor)
	}

	return Attr{
		Ino:   uint64(ino.Num),
		Mode:  ino.FileMode(),
		Nlink: uint32(ino.LinksCount),
		UID:   uid,
		GID:   gid,
		Size:  uint64(ino.Size),
		Atime: time.Unix(int64(ino.Atime), 0),
		Ctime: time.Unix(int64(ino.Ctime), 0),
		Mtime: time.Unix(int64(ino.Mtime), 0),
		Dev:   dev,
	}, nil
}

// Readdir resolves path to a directory and returns the names of its
// entries in on-disk order, including "." and "..". The full entry list
// is decoded eagerly rather than streamed, so callers never observe a
// partially-read directory.
func (sb *Superblock) Readdir(path string) ([]string, error) {
	ino, err := sb.ResolveInode(path)
	if err != nil {
		return nil, err
	}
	if !ino.IsDir() {
		return nil, ErrNotADirectory
	}

	entries, err := ino.ReadDir()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// Access reports whether path resolves successfully. No permission check
// is performed beyond that.
func (sb *Superblock) Access(path string) error {
	_, err := sb.ResolveInode(path)
	return err
}

// Statfs reports filesystem-wide capacity figures. Bavail excludes the
// blocks reserved for the superuser, per f_bavail = free_blocks -
// reserved_blocks.
func (sb *Superblock) Statfs() StatfsResult {
	var bavail uint64
	if sb.FreeBlocksCount > sb.RBlocksCount {
		bavail = uint64(sb.FreeBlocksCount - sb.RBlocksCount)
	}

	return StatfsResult{
		Bsize:   sb.BlockSize,
		Blocks:  uint64(sb.BlocksCount),
		Bfree:   uint64(sb.FreeBlocksCount),
		Bavail:  bavail,
		Files:   uint64(sb.InodesCount),
		Ffree:   uint64(sb.FreeInodesCount),
		Namemax: 256,
	}
}

// CopyOut streams a regular file's full contents to w without going
// through the FUSE boundary, block by block.
func (sb *Superblock) CopyOut(path string, w io.Writer) (int64, error) {
	ino, err := sb.ResolveInode(path)
	if err != nil {
		return 0, err
	}

	blockSize := int(sb.BlockSize)
	var written int64
	for offset := int64(0); offset < int64(ino.Size); offset += int64(blockSize) {
		chunk, err := ino.ReadRange(offset, blockSize)
		if err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// The following mutating operations never touch the image: this is a
// read-only filesystem by construction.

func (sb *Superblock) Mknod(string) error    { return ErrReadOnly }
func (sb *Superblock) Unlink(string) error   { return ErrReadOnly }
func (sb *Superblock) Write(string) error    { return ErrReadOnly }
func (sb *Superblock) Mkdir(string) error    { return ErrReadOnly }
func (sb *Superblock) Rmdir(string) error    { return ErrReadOnly }
func (sb *Superblock) Rename(string) error   { return ErrReadOnly }
func (sb *Superblock) Chown(string) error    { return ErrReadOnly }
func (sb *Superblock) Chmod(string) error    { return ErrReadOnly }
func (sb *Superblock) Truncate(string) error { return ErrReadOnly }
func (sb *Superblock) Fsync(string) error    { return ErrReadOnly }
func (sb *Superblock) Symlink(string) error  { return ErrReadOnly }
func (sb *Superblock) Link(string) error     { return ErrReadOnly }
func (sb *Superblock) Setxattr(string) error { return ErrReadOnly }
func (sb *Superblock) Removexattr(string) error { return ErrReadOnly }

// Bmap has no equivalent in this decoder and is always unsupported.
func (sb *Superblock) Bmap(string) error { return ErrNotSupported }
