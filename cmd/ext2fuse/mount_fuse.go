//go:build fuse

package main

import (
	"github.com/dmytrish/go-ext2fuse"
)

func mount(sb *ext2.Superblock, mountpoint string) error {
	server, err := ext2.Mount(sb, mountpoint, nil)
	if err != nil {
		return err
	}
	server.Wait()
	return nil
}
