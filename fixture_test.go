package ext2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmytrish/go-ext2fuse"
)

const fixtureHelloContent = "hello, ext2\n"
const fixtureSymlinkTarget = "hello.txt"

// buildFixture assembles a tiny single-group ext2 image:
//
//	/                (inode 2, dir)
//	/hello.txt       (inode 3, regular file, "hello, ext2\n")
//	/sub/            (inode 4, dir, empty besides . and ..)
//	/link            (inode 5, short symlink -> hello.txt)
func buildFixture(t *testing.T) *ext2.Superblock {
	t.Helper()

	const blockSize = 1024
	b := newImageBuilder(blockSize, 11)

	b.writeSuperblock(16, 11, 11, 16)
	b.writeGroupDescriptor(3, 4, 5)

	b.writeInode(2, rawInode{
		mode: modeDirectory, linksCount: 3, size: blockSize,
		direct: [12]uint32{7},
	})
	b.writeInode(3, rawInode{
		mode: modeRegular, linksCount: 1, size: uint32(len(fixtureHelloContent)),
		direct: [12]uint32{9},
	})
	b.writeInode(4, rawInode{
		mode: modeDirectory, linksCount: 2, size: blockSize,
		direct: [12]uint32{8},
	})
	b.writeInode(5, symlinkInode(fixtureSymlinkTarget))

	b.writeDirBlock(7, []dirent{
		{inode: 2, fileType: 2, name: "."},
		{inode: 2, fileType: 2, name: ".."},
		{inode: 3, fileType: 1, name: "hello.txt"},
		{inode: 4, fileType: 2, name: "sub"},
		{inode: 5, fileType: 7, name: "link"},
	})
	b.writeDirBlock(8, []dirent{
		{inode: 4, fileType: 2, name: "."},
		{inode: 2, fileType: 2, name: ".."},
	})
	b.writeFileBlock(9, []byte(fixtureHelloContent))

	sb, err := ext2.New(b.reader())
	require.NoError(t, err)
	return sb
}

// symlinkInode packs target as a short ("fast") symlink directly across
// the inode's 15 block-pointer slots.
func symlinkInode(target string) rawInode {
	ri := rawInode{mode: modeSymlink, linksCount: 1, size: uint32(len(target))}

	raw := make([]byte, 60)
	copy(raw, target)
	for i := 0; i < 12; i++ {
		ri.direct[i] = leUint32(raw[i*4 : i*4+4])
	}
	for i := 0; i < 3; i++ {
		ri.indirect[i] = leUint32(raw[48+i*4 : 48+i*4+4])
	}
	return ri
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
