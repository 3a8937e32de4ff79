package ext2

import (
	"io"
	"io/fs"
	"path"
	"time"

	stderrors "errors"
)

// FS adapts a Superblock to the standard library's io/fs.FS family, so
// the decoder can be driven by fs.ReadFile, fs.Glob, fs.WalkDir, or
// http.FileServer without going through the FUSE boundary at all.
type FS struct {
	sb *Superblock
}

// NewFS wraps sb as an io/fs.FS.
func NewFS(sb *Superblock) *FS {
	return &FS{sb: sb}
}

var (
	_ fs.FS        = (*FS)(nil)
	_ fs.StatFS    = (*FS)(nil)
	_ fs.ReadDirFS = (*FS)(nil)
)

func toFSPath(name string) string {
	if name == "." {
		return "/"
	}
	return "/" + name
}

// Open implements fs.FS.
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	ino, err := f.sb.ResolveInode(toFSPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: toFSErr(err)}
	}

	if ino.IsDir() {
		return &dirHandle{ino: ino, name: name}, nil
	}
	return &fileHandle{SectionReader: io.NewSectionReader(ino, 0, int64(ino.Size)), ino: ino, name: name}, nil
}

// Stat implements fs.StatFS.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	ino, err := f.sb.ResolveInode(toFSPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: toFSErr(err)}
	}
	return &fileinfo{ino: ino, name: path.Base(name)}, nil
}

// ReadDir implements fs.ReadDirFS.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	ino, err := f.sb.ResolveInode(toFSPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: toFSErr(err)}
	}
	return dirEntries(ino)
}

func dirEntries(ino *Inode) ([]fs.DirEntry, error) {
	entries, err := ino.ReadDir()
	if err != nil {
		return nil, err
	}
	out := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		out = append(out, direntry{e, ino.sb})
	}
	return out, nil
}

func toFSErr(err error) error {
	switch {
	case stderrors.Is(err, ErrNoEntry), stderrors.Is(err, ErrNoSuchInode):
		return fs.ErrNotExist
	case stderrors.Is(err, ErrNotADirectory):
		return fs.ErrInvalid
	default:
		return err
	}
}

// direntry implements fs.DirEntry for one ext2 directory entry.
type direntry struct {
	e  DirEntry
	sb *Superblock
}

func (d direntry) Name() string { return d.e.Name }
func (d direntry) IsDir() bool  { return d.e.IsDir() }
func (d direntry) Type() fs.FileMode {
	if mode, ok := fileTypeMode(d.e.FileType); ok {
		return mode
	}
	return fs.ModeIrregular
}
func (d direntry) Info() (fs.FileInfo, error) {
	ino, err := d.sb.GetInode(d.e.Inode)
	if err != nil {
		return nil, err
	}
	return &fileinfo{ino: ino, name: d.e.Name}, nil
}

// fileHandle adapts an *Inode to fs.File plus io.Seeker for regular files.
type fileHandle struct {
	*io.SectionReader
	ino  *Inode
	name string
}

var _ fs.File = (*fileHandle)(nil)

func (f *fileHandle) Stat() (fs.FileInfo, error) {
	return &fileinfo{ino: f.ino, name: path.Base(f.name)}, nil
}
func (f *fileHandle) Close() error { return nil }

// dirHandle adapts a directory *Inode to fs.ReadDirFile.
type dirHandle struct {
	ino     *Inode
	name    string
	entries []fs.DirEntry
	read    int
}

var _ fs.ReadDirFile = (*dirHandle)(nil)

func (d *dirHandle) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}
func (d *dirHandle) Stat() (fs.FileInfo, error) {
	return &fileinfo{ino: d.ino, name: path.Base(d.name)}, nil
}
func (d *dirHandle) Close() error { return nil }

func (d *dirHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		entries, err := dirEntries(d.ino)
		if err != nil {
			return nil, err
		}
		d.entries = entries
	}

	remaining := d.entries[d.read:]
	if n <= 0 {
		d.read = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.read += n
	return remaining[:n], nil
}

// fileinfo implements fs.FileInfo over an *Inode.
type fileinfo struct {
	ino  *Inode
	name string
}

var _ fs.FileInfo = (*fileinfo)(nil)

func (fi *fileinfo) Name() string       { return fi.name }
func (fi *fileinfo) Size() int64        { return int64(fi.ino.Size) }
func (fi *fileinfo) Mode() fs.FileMode  { return fi.ino.FileMode() }
func (fi *fileinfo) ModTime() time.Time { return time.Unix(int64(fi.ino.Mtime), 0) }
func (fi *fileinfo) IsDir() bool        { return fi.ino.IsDir() }
func (fi *fileinfo) Sys() any           { return fi.ino }
