package ext2

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Option configures a Superblock at mount time. Immutable afterwards.
type Option func(sb *Superblock)

// WithLogger redirects the package's structured logging to l instead of
// logrus's standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(sb *Superblock) {
		sb.log = l
	}
}

// WithUser causes getattr to substitute the calling process's uid/gid for
// the on-disk owner, matching the `-o user` mount option.
func WithUser() Option {
	return func(sb *Superblock) {
		sb.getuid = func() (uint32, uint32) {
			return uint32(os.Getuid()), uint32(os.Getgid())
		}
	}
}
