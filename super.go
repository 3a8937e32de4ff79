package ext2

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	superblockOffset = 1024
	superblockSize   = 1024
	ext2Magic        = 0xEF53
	rootInodeNum     = 2
)

// rawSuperblock mirrors the on-disk layout byte for byte: 13 u32, 6 u16,
// 4 u32, 2 u16, u32, 2 u16, 3 u32, 16 raw UUID bytes, 16 byte label, 64
// byte last-mount path, u32, 2 u8.
type rawSuperblock struct {
	InodesCount     uint32
	BlocksCount     uint32
	RBlocksCount    uint32
	FreeBlocksCount uint32
	FreeInodesCount uint32
	FirstDataBlock  uint32
	LogBlockSize    uint32
	LogFragSize     uint32
	BlocksPerGroup  uint32
	FragsPerGroup   uint32
	InodesPerGroup  uint32
	MTime           uint32
	WTime           uint32

	MntCount      uint16
	MaxMntCount   uint16
	Magic         uint16
	State         uint16
	Errors        uint16
	MinorRevLevel uint16

	LastCheck     uint32
	CheckInterval uint32
	CreatorOS     uint32
	RevLevel      uint32

	DefResUID uint16
	DefResGID uint16

	FirstIno uint32

	InodeSize    uint16
	BlockGroupNr uint16

	FeatureCompat   uint32
	FeatureIncompat uint32
	FeatureROCompat uint32

	UUIDRaw    [16]byte
	VolumeName [16]byte

	LastMounted [64]byte

	AlgoUsageBitmap uint32

	PreallocBlocks    uint8
	PreallocDirBlocks uint8
}

// Superblock is the decoded, immutable-after-mount parameterisation of an
// ext2 filesystem image: block size, inode size, group geometry, counts,
// UUID and label.
type Superblock struct {
	io  *blockIO
	raw rawSuperblock

	BlockSize       uint32
	InodeSize       uint32
	InodesCount     uint32
	BlocksCount     uint32
	RBlocksCount    uint32
	FreeBlocksCount uint32
	FreeInodesCount uint32
	BlocksPerGroup  uint32
	InodesPerGroup  uint32
	FirstDataBlock  uint32
	UUID            string
	Label           string

	groups []GroupDescriptor

	log    logrus.FieldLogger
	getuid func() (uint32, uint32)
}

// New decodes the superblock and group descriptor table from r and returns
// a ready-to-use, read-only view of the ext2 filesystem. r is never
// mutated; New is the only place the block size is established.
func New(r io.ReaderAt, opts ...Option) (*Superblock, error) {
	sb := &Superblock{io: newBlockIO(r), log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(sb)
	}

	sb.log.Debug("ext2: reading superblock")
	head, err := sb.io.readAt(superblockOffset, superblockSize)
	if err != nil {
		return nil, errors.Wrap(err, "ext2: reading superblock")
	}

	if err := sb.decode(head); err != nil {
		return nil, err
	}

	sb.log.WithFields(logrus.Fields{
		"block_size": sb.BlockSize,
		"inode_size": sb.InodeSize,
		"inodes":     sb.InodesCount,
		"blocks":     sb.BlocksCount,
		"uuid":       sb.UUID,
		"label":      sb.Label,
	}).Debug("ext2: superblock decoded")

	groups, err := sb.readGroupDescriptors()
	if err != nil {
		return nil, err
	}
	sb.groups = groups

	return sb, nil
}

func (sb *Superblock) decode(data []byte) error {
	v := reflect.ValueOf(&sb.raw).Elem()
	r := bytes.NewReader(data)
	for i := 0; i < v.NumField(); i++ {
		if err := binary.Read(r, binary.LittleEndian, v.Field(i).Addr().Interface()); err != nil {
			return errors.Wrapf(err, "ext2: decoding superblock field %s", v.Type().Field(i).Name)
		}
	}

	if sb.raw.Magic != ext2Magic {
		return errors.Wrapf(ErrBadMagic, "got 0x%04x", sb.raw.Magic)
	}

	sb.io.setBlockSize(1024 << sb.raw.LogBlockSize)

	sb.BlockSize = 1024 << sb.raw.LogBlockSize
	if sb.raw.RevLevel == 0 {
		sb.InodeSize = 128
	} else {
		sb.InodeSize = uint32(sb.raw.InodeSize)
	}
	sb.InodesCount = sb.raw.InodesCount
	sb.BlocksCount = sb.raw.BlocksCount
	sb.RBlocksCount = sb.raw.RBlocksCount
	sb.FreeBlocksCount = sb.raw.FreeBlocksCount
	sb.FreeInodesCount = sb.raw.FreeInodesCount
	sb.BlocksPerGroup = sb.raw.BlocksPerGroup
	sb.InodesPerGroup = sb.raw.InodesPerGroup
	sb.FirstDataBlock = sb.raw.FirstDataBlock
	sb.UUID = uuid.Must(uuid.FromBytes(sb.raw.UUIDRaw[:])).String()
	sb.Label = strings.TrimRight(string(sb.raw.VolumeName[:]), "\x00")

	if sb.raw.RevLevel > 0 {
		if err := sb.checkIncompatFeatures(); err != nil {
			return err
		}
	}

	return nil
}

// RootIno is the always-2 inode number of the root directory.
func (sb *Superblock) RootIno() uint32 {
	return rootInodeNum
}

// Close releases the backing store.
func (sb *Superblock) Close() error {
	sb.log.Debug("ext2: unmounting")
	return sb.io.close()
}
