package ext2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmytrish/go-ext2fuse"
)

func TestReadDirListsEntries(t *testing.T) {
	sb := buildFixture(t)

	root, err := sb.GetInode(2)
	require.NoError(t, err)

	entries, err := root.ReadDir()
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	require.Equal(t, []string{".", "..", "hello.txt", "sub", "link"}, names)
}

func TestLookupFindsAndRejects(t *testing.T) {
	sb := buildFixture(t)
	root, err := sb.GetInode(2)
	require.NoError(t, err)

	ent, err := root.Lookup("hello.txt")
	require.NoError(t, err)
	require.Equal(t, uint32(3), ent.Inode)
	require.True(t, ent.FileType == 1)

	_, err = root.Lookup("does-not-exist")
	require.ErrorIs(t, err, ext2.ErrNoEntry)
}

func TestReadDirOnFileFails(t *testing.T) {
	sb := buildFixture(t)
	file, err := sb.GetInode(3)
	require.NoError(t, err)

	_, err = file.ReadDir()
	require.ErrorIs(t, err, ext2.ErrNotADirectory)
}

// buildMultiBlockDirFixture assembles a root directory whose entries
// span two data blocks, so ReadDir must walk past db[0] to see them
// all.
func buildMultiBlockDirFixture(t *testing.T) *ext2.Superblock {
	t.Helper()

	const blockSize = 1024
	b := newImageBuilder(blockSize, 10)

	b.writeSuperblock(16, 10, 10, 16)
	b.writeGroupDescriptor(3, 4, 5)

	b.writeInode(2, rawInode{
		mode: modeDirectory, linksCount: 2, size: 2 * blockSize,
		direct: [12]uint32{7, 8},
	})
	b.writeInode(3, rawInode{
		mode: modeRegular, linksCount: 1, size: 4,
		direct: [12]uint32{9},
	})

	b.writeDirBlock(7, []dirent{
		{inode: 2, fileType: 2, name: "."},
		{inode: 2, fileType: 2, name: ".."},
		{inode: 3, fileType: 1, name: "first.txt"},
	})
	b.writeDirBlock(8, []dirent{
		{inode: 3, fileType: 1, name: "second.txt"},
	})
	b.writeFileBlock(9, []byte("abcd"))

	sb, err := ext2.New(b.reader())
	require.NoError(t, err)
	return sb
}

func TestReadDirSpansMultipleBlocks(t *testing.T) {
	sb := buildMultiBlockDirFixture(t)
	root, err := sb.GetInode(2)
	require.NoError(t, err)

	entries, err := root.ReadDir()
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	require.Equal(t, []string{".", "..", "first.txt", "second.txt"}, names)
}

func TestLookupFindsEntryInSecondDirBlock(t *testing.T) {
	sb := buildMultiBlockDirFixture(t)
	root, err := sb.GetInode(2)
	require.NoError(t, err)

	ent, err := root.Lookup("second.txt")
	require.NoError(t, err)
	require.Equal(t, uint32(3), ent.Inode)
}
