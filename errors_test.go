package ext2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmytrish/go-ext2fuse"
)

func TestErrnoMapsSentinelsToPosixValues(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ext2.ErrNoEntry, -ext2.ENOENT},
		{ext2.ErrNoSuchInode, -ext2.ENOENT},
		{ext2.ErrNotADirectory, -ext2.ENOTDIR},
		{ext2.ErrReadOnly, -ext2.EROFS},
		{ext2.ErrNotSupported, -ext2.ENOSYS},
		{ext2.ErrCorruptDirectory, -ext2.EIO},
		{nil, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ext2.Errno(c.err))
	}
}
