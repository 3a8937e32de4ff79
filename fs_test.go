package ext2_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmytrish/go-ext2fuse"
)

func TestFSOpenReadsRegularFile(t *testing.T) {
	sb := buildFixture(t)
	fsys := ext2.NewFS(sb)

	data, err := fs.ReadFile(fsys, "hello.txt")
	require.NoError(t, err)
	require.Equal(t, fixtureHelloContent, string(data))
}

func TestFSReadDirRoot(t *testing.T) {
	sb := buildFixture(t)
	fsys := ext2.NewFS(sb)

	entries, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"hello.txt", "sub", "link"}, names)
}

func TestFSStatReportsSize(t *testing.T) {
	sb := buildFixture(t)
	fsys := ext2.NewFS(sb)

	info, err := fsys.Stat("hello.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(fixtureHelloContent)), info.Size())
	require.False(t, info.IsDir())
}

func TestFSOpenMissingFileIsNotExist(t *testing.T) {
	sb := buildFixture(t)
	fsys := ext2.NewFS(sb)

	_, err := fsys.Open("nope")
	require.True(t, fs.IsNotExist(err))
}
