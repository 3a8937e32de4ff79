package ext2_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmytrish/go-ext2fuse"
)

func TestNewDecodesSuperblock(t *testing.T) {
	sb := buildFixture(t)

	require.Equal(t, uint32(1024), sb.BlockSize)
	require.Equal(t, uint32(2), sb.RootIno())
	require.NotEmpty(t, sb.UUID)
	require.Equal(t, "testlabel", sb.Label)
}

func TestNewRejectsBadMagic(t *testing.T) {
	data := make([]byte, 2048)
	_, err := ext2.New(bytes.NewReader(data))
	require.ErrorIs(t, err, ext2.ErrBadMagic)
}

func TestNewRejectsTruncatedImage(t *testing.T) {
	// Valid magic at the right spot but the reader has nothing past it.
	data := make([]byte, 1024+58)
	data[1024+56] = 0x53
	data[1024+57] = 0xEF
	_, err := ext2.New(bytes.NewReader(data))
	require.Error(t, err)
}
