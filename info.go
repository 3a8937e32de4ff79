package ext2

import "time"

// Info reports archive-level metadata: revision, mount bookkeeping, and
// space/inode accounting.
type Info struct {
	UUID             string
	Label            string
	BlockSize        uint32
	RevLevel         uint32
	TotalBlocks      uint64
	FreeBlocks       uint64
	TotalInodes      uint64
	FreeInodes       uint64
	MountCount       uint16
	MaxMountCount    uint16
	LastCheck        time.Time
	CheckInterval    time.Duration
}

// Info returns the archive-level summary for this filesystem.
func (sb *Superblock) Info() Info {
	return Info{
		UUID:          sb.UUID,
		Label:         sb.Label,
		BlockSize:     sb.BlockSize,
		RevLevel:      sb.raw.RevLevel,
		TotalBlocks:   uint64(sb.BlocksCount),
		FreeBlocks:    uint64(sb.FreeBlocksCount),
		TotalInodes:   uint64(sb.InodesCount),
		FreeInodes:    uint64(sb.FreeInodesCount),
		MountCount:    sb.raw.MntCount,
		MaxMountCount: sb.raw.MaxMntCount,
		LastCheck:     time.Unix(int64(sb.raw.LastCheck), 0),
		CheckInterval: time.Duration(sb.raw.CheckInterval) * time.Second,
	}
}

// SpaceBytes returns the total addressable space of the image in bytes.
func (sb *Superblock) SpaceBytes() uint64 {
	return uint64(sb.BlocksCount) * uint64(sb.BlockSize)
}

// FreeSpaceBytes returns the free space of the image in bytes.
func (sb *Superblock) FreeSpaceBytes() uint64 {
	return uint64(sb.FreeBlocksCount) * uint64(sb.BlockSize)
}
