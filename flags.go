package ext2

import (
	"strings"

	"github.com/pkg/errors"
)

// CompatFlag, IncompatFlag and ROCompatFlag name the three feature-flag
// words every ext2 superblock carries. A reader that doesn't recognise a
// bit in IncompatFlag must refuse to mount; a bit in ROCompatFlag only
// forces read-only mounting, which this decoder already is.
type CompatFlag uint32
type IncompatFlag uint32
type ROCompatFlag uint32

const (
	FeatureCompatDirPrealloc  CompatFlag = 0x0001
	FeatureCompatImagicInodes CompatFlag = 0x0002
	FeatureCompatHasJournal   CompatFlag = 0x0004
	FeatureCompatExtAttr      CompatFlag = 0x0008
	FeatureCompatResizeInode  CompatFlag = 0x0010
	FeatureCompatDirIndex     CompatFlag = 0x0020
)

const (
	FeatureIncompatCompression IncompatFlag = 0x0001
	FeatureIncompatFiletype    IncompatFlag = 0x0002
	FeatureIncompatRecover     IncompatFlag = 0x0004
	FeatureIncompatJournalDev  IncompatFlag = 0x0008
	FeatureIncompatMetaBG      IncompatFlag = 0x0010
)

const (
	FeatureROCompatSparseSuper ROCompatFlag = 0x0001
	FeatureROCompatLargeFile   ROCompatFlag = 0x0002
	FeatureROCompatBtreeDir    ROCompatFlag = 0x0004
)

// knownIncompat is the set of FeatureIncompat bits this decoder
// understands. Anything else in a superblock's incompat word means the
// image uses on-disk structures this decoder cannot parse.
const knownIncompat = FeatureIncompatFiletype | FeatureIncompatRecover

var compatNames = map[uint32]string{
	uint32(FeatureCompatDirPrealloc):  "dir_prealloc",
	uint32(FeatureCompatImagicInodes): "imagic_inodes",
	uint32(FeatureCompatHasJournal):   "has_journal",
	uint32(FeatureCompatExtAttr):      "ext_attr",
	uint32(FeatureCompatResizeInode):  "resize_inode",
	uint32(FeatureCompatDirIndex):     "dir_index",
}

var incompatNames = map[uint32]string{
	uint32(FeatureIncompatCompression): "compression",
	uint32(FeatureIncompatFiletype):    "filetype",
	uint32(FeatureIncompatRecover):     "recover",
	uint32(FeatureIncompatJournalDev):  "journal_dev",
	uint32(FeatureIncompatMetaBG):      "meta_bg",
}

var rocompatNames = map[uint32]string{
	uint32(FeatureROCompatSparseSuper): "sparse_super",
	uint32(FeatureROCompatLargeFile):   "large_file",
	uint32(FeatureROCompatBtreeDir):    "btree_dir",
}

func (f CompatFlag) Has(bit CompatFlag) bool     { return f&bit == bit }
func (f IncompatFlag) Has(bit IncompatFlag) bool { return f&bit == bit }
func (f ROCompatFlag) Has(bit ROCompatFlag) bool { return f&bit == bit }

func (f CompatFlag) String() string   { return flagString(uint32(f), compatNames) }
func (f IncompatFlag) String() string { return flagString(uint32(f), incompatNames) }
func (f ROCompatFlag) String() string { return flagString(uint32(f), rocompatNames) }

func flagString(bits uint32, names map[uint32]string) string {
	if bits == 0 {
		return "none"
	}
	var parts []string
	for bit := uint32(1); bit != 0; bit <<= 1 {
		if bits&bit == 0 {
			continue
		}
		if name, ok := names[bit]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, "unknown")
		}
	}
	return strings.Join(parts, ",")
}

// CompatFlags, IncompatFlags and ROCompatFlags expose the superblock's
// three feature words as typed flag sets.
func (sb *Superblock) CompatFlags() CompatFlag     { return CompatFlag(sb.raw.FeatureCompat) }
func (sb *Superblock) IncompatFlags() IncompatFlag { return IncompatFlag(sb.raw.FeatureIncompat) }
func (sb *Superblock) ROCompatFlags() ROCompatFlag { return ROCompatFlag(sb.raw.FeatureROCompat) }

// checkIncompatFeatures refuses to mount an image whose incompat word
// sets a bit this decoder doesn't implement, mirroring how a real kernel
// ext2 driver bails out on unrecognised incompat features rather than
// silently misinterpreting on-disk structures.
func (sb *Superblock) checkIncompatFeatures() error {
	unknown := IncompatFlag(sb.raw.FeatureIncompat) &^ knownIncompat
	if unknown != 0 {
		return errors.Wrapf(ErrUnsupportedFeature, "incompat flags %s", unknown)
	}
	return nil
}
