//go:build !fuse

package main

import (
	"errors"

	"github.com/dmytrish/go-ext2fuse"
)

func mount(sb *ext2.Superblock, mountpoint string) error {
	return errors.New("this build was compiled without FUSE support; rebuild with -tags fuse")
}
