package ext2

import (
	"strings"

	"github.com/pkg/errors"
)

// splitPath drops empty segments, so leading, trailing and repeated
// slashes are all handled uniformly.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Root returns the filesystem's root directory inode (inode 2).
func (sb *Superblock) Root() (*Inode, error) {
	return sb.GetInode(sb.RootIno())
}

// ResolveInode walks path component by component from the root inode,
// one directory lookup per component, and returns the final inode. No
// symlink following happens here; callers decide whether and how to
// follow a symlink they resolve to.
func (sb *Superblock) ResolveInode(path string) (*Inode, error) {
	root, err := sb.Root()
	if err != nil {
		return nil, err
	}

	parts := splitPath(path)
	if len(parts) == 0 {
		return root, nil
	}

	cur := root
	for _, name := range parts {
		if !cur.IsDir() {
			return nil, errors.Wrapf(ErrNotADirectory, "resolving %q", path)
		}
		ent, err := cur.Lookup(name)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %q", path)
		}
		cur, err = sb.GetInode(ent.Inode)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %q", path)
		}
	}
	return cur, nil
}

// ResolveEntry returns the DirEntry naming path's final component, the
// value getattr needs (inode number, file-type hint). For "/" this is a
// synthetic entry built from the root directory's own "." record.
func (sb *Superblock) ResolveEntry(path string) (DirEntry, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		root, err := sb.Root()
		if err != nil {
			return DirEntry{}, err
		}
		return root.Lookup(".")
	}

	root, err := sb.Root()
	if err != nil {
		return DirEntry{}, err
	}

	cur := root
	var ent DirEntry
	for _, name := range parts {
		if !cur.IsDir() {
			return DirEntry{}, errors.Wrapf(ErrNotADirectory, "resolving %q", path)
		}
		ent, err = cur.Lookup(name)
		if err != nil {
			return DirEntry{}, errors.Wrapf(err, "resolving %q", path)
		}
		cur, err = sb.GetInode(ent.Inode)
		if err != nil {
			return DirEntry{}, errors.Wrapf(err, "resolving %q", path)
		}
	}
	return ent, nil
}
