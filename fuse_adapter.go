//go:build fuse

package ext2

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// node is one fs.Inode in the tree Go-FUSE discovers lazily through
// Lookup and Readdir. It wraps the decoder's own *Inode; nothing here
// caches decoded state beyond what the kernel already caches for us.
type node struct {
	fs.Inode

	sb  *Superblock
	ino *Inode
}

var (
	_ fs.NodeLookuper   = (*node)(nil)
	_ fs.NodeGetattrer  = (*node)(nil)
	_ fs.NodeReaddirer  = (*node)(nil)
	_ fs.NodeOpener     = (*node)(nil)
	_ fs.NodeReader     = (*node)(nil)
	_ fs.NodeReadlinker = (*node)(nil)
	_ fs.NodeStatfser   = (*node)(nil)
	_ fs.NodeAccesser   = (*node)(nil)
)

func stableAttrFor(ino *Inode) fs.StableAttr {
	return fs.StableAttr{
		Mode: uint32(ino.Mode) & S_IFMT,
		Ino:  uint64(ino.Num),
	}
}

func fillAttrOut(ino *Inode, out *fuse.Attr) {
	out.Ino = uint64(ino.Num)
	out.Size = uint64(ino.Size)
	out.Mode = uint32(ino.Mode)
	out.Nlink = uint32(ino.LinksCount)
	out.Uid = uint32(ino.UID)
	out.Gid = uint32(ino.GID)
	if ino.sb.getuid != nil {
		out.Uid, out.Gid = ino.sb.getuid()
	}
	out.Atime = ino.Atime
	out.Mtime = ino.Mtime
	out.Ctime = ino.Ctime
	if ino.IsDevice() {
		major, minor := ino.DeviceNumbers()
		out.Rdev = major<<8 | minor
	}
}

// Lookup implements fs.NodeLookuper: it resolves name as a child of the
// directory this node wraps and files it into the kernel's dentry cache.
func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	ent, err := n.ino.Lookup(name)
	if err != nil {
		return nil, syscall.Errno(-Errno(err))
	}
	child, err := n.sb.GetInode(ent.Inode)
	if err != nil {
		return nil, syscall.Errno(-Errno(err))
	}

	fillAttrOut(child, &out.Attr)
	childNode := &node{sb: n.sb, ino: child}
	return n.NewInode(ctx, childNode, stableAttrFor(child)), 0
}

// Getattr implements fs.NodeGetattrer.
func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttrOut(n.ino, &out.Attr)
	return 0
}

// Access implements fs.NodeAccesser: existence after path resolution is
// the only check this decoder performs.
func (n *node) Access(ctx context.Context, mask uint32) syscall.Errno {
	return 0
}

// dirStream adapts a decoded entry slice to fs.DirStream.
type dirStream struct {
	entries []DirEntry
	pos     int
}

func (d *dirStream) HasNext() bool { return d.pos < len(d.entries) }

func (d *dirStream) Next() (fuse.DirEntry, syscall.Errno) {
	e := d.entries[d.pos]
	d.pos++
	mode, _ := fileTypeMode(e.FileType)
	return fuse.DirEntry{Mode: uint32(mode), Name: e.Name, Ino: uint64(e.Inode)}, 0
}

func (d *dirStream) Close() {}

// Readdir implements fs.NodeReaddirer.
func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.ino.ReadDir()
	if err != nil {
		return nil, syscall.Errno(-Errno(err))
	}
	return &dirStream{entries: entries}, 0
}

// Open implements fs.NodeOpener. The image never changes under a mount,
// so the kernel is told it may cache file contents freely.
func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

// Read implements fs.NodeReader, serving directly off the inode's block
// list without going through a separate file handle.
func (n *node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	buf, err := n.ino.ReadRange(off, len(dest))
	if err != nil {
		return nil, syscall.Errno(-Errno(err))
	}
	return fuse.ReadResultData(buf), 0
}

// Readlink implements fs.NodeReadlinker.
func (n *node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	target, err := n.ino.Readlink()
	if err != nil {
		return nil, syscall.Errno(-Errno(err))
	}
	return target, 0
}

// Statfs implements fs.NodeStatfser.
func (n *node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	st := n.sb.Statfs()
	out.Bsize = st.Bsize
	out.Blocks = st.Blocks
	out.Bfree = st.Bfree
	out.Bavail = st.Bavail
	out.Files = st.Files
	out.Ffree = st.Ffree
	out.NameLen = st.Namemax
	return 0
}

// Mount starts serving sb as a read-only FUSE filesystem at mountpoint
// and returns the running server without blocking; call its Wait to
// block until the filesystem is unmounted, and its Unmount to stop it.
func Mount(sb *Superblock, mountpoint string, opts *fs.Options) (*fuse.Server, error) {
	root, err := sb.Root()
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &fs.Options{}
	}
	opts.MountOptions.Name = "ext2fuse"
	opts.MountOptions.Options = append(opts.MountOptions.Options, "ro")

	rootNode := &node{sb: sb, ino: root}
	server, err := fs.Mount(mountpoint, rootNode, opts)
	if err != nil {
		return nil, err
	}
	return server, nil
}
