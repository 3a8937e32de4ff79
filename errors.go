package ext2

import "errors"

// Sentinel errors produced by the decoder, usable with errors.Is even
// though each raise site wraps them with call-site context via pkg/errors.
var (
	// ErrBadMagic is returned when the superblock's s_magic field is not 0xEF53.
	ErrBadMagic = errors.New("ext2: bad superblock magic")

	// ErrCorruptGroupDescriptor is returned when a group descriptor's
	// block_bitmap, inode_bitmap or inode_table falls outside its group's range.
	ErrCorruptGroupDescriptor = errors.New("ext2: corrupt group descriptor")

	// ErrNoSuchInode is returned when an inode number is out of the
	// filesystem's valid range.
	ErrNoSuchInode = errors.New("ext2: no such inode")

	// ErrNoEntry is returned when a path component has no matching
	// directory entry.
	ErrNoEntry = errors.New("ext2: no such file or directory")

	// ErrNotADirectory is returned when a path resolution step or
	// directory decode is attempted against a non-directory inode.
	ErrNotADirectory = errors.New("ext2: not a directory")

	// ErrCorruptDirectory is returned on a bad file-type code, zero
	// entry_size, or a directory stream that overruns its data blocks.
	ErrCorruptDirectory = errors.New("ext2: corrupt directory")

	// ErrTruncatedRead is returned when the backing store returns fewer
	// bytes than requested.
	ErrTruncatedRead = errors.New("ext2: truncated read")

	// ErrReadOnly is returned by every mutating operation.
	ErrReadOnly = errors.New("ext2: read-only filesystem")

	// ErrNotSupported is returned by non-mutating operations this core
	// does not implement (bmap).
	ErrNotSupported = errors.New("ext2: operation not supported")

	// ErrNotASymlink is returned when Readlink is called on a non-symlink inode.
	ErrNotASymlink = errors.New("ext2: not a symbolic link")

	// ErrUnsupportedFeature is returned when a superblock's incompat
	// feature word sets a bit this decoder cannot interpret.
	ErrUnsupportedFeature = errors.New("ext2: unsupported incompat feature")
)

// POSIX errno values the callback surface reports, kept local so this
// package has no dependency on golang.org/x/sys/unix for the handful of
// constants the FUSE boundary needs.
const (
	ENOENT  = 2
	EIO     = 5
	EROFS   = 30
	ENOTDIR = 20
	ENOSYS  = 38
)

// Errno maps a decoder error to the negative POSIX errno the FUSE
// callback contract requires. Errors are unwrapped first since every
// raise site wraps its sentinel with pkg/errors call-site context.
func Errno(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrNoSuchInode), errors.Is(err, ErrNoEntry):
		return -ENOENT
	case errors.Is(err, ErrNotADirectory):
		return -ENOTDIR
	case errors.Is(err, ErrCorruptDirectory), errors.Is(err, ErrTruncatedRead):
		return -EIO
	case errors.Is(err, ErrReadOnly):
		return -EROFS
	case errors.Is(err, ErrNotSupported):
		return -ENOSYS
	default:
		return -EIO
	}
}
