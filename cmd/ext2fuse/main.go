package main

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmytrish/go-ext2fuse"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ext2fuse:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "ext2fuse",
		Short: "decode and optionally mount ext2 filesystem images",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newMountCmd(), newLsCmd(), newCatCmd(), newInfoCmd())
	return root
}

func openImage(path string) (*ext2.Superblock, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	sb, err := ext2.New(f, ext2.WithLogger(logrus.StandardLogger()))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return sb, f, nil
}

func newMountCmd() *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "mount <image> <mountpoint>",
		Short: "mount the image read-only via FUSE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []ext2.Option{ext2.WithLogger(logrus.StandardLogger())}
			if user {
				opts = append(opts, ext2.WithUser())
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sb, err := ext2.New(f, opts...)
			if err != nil {
				return err
			}
			return mount(sb, args[1])
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "report the calling user as owner of every inode")
	return cmd
}

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <image> [path]",
		Short: "list a directory's entries",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 2 {
				path = args[1]
			}

			sb, f, err := openImage(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			relPath := strings.TrimPrefix(path, "/")
			if relPath == "" {
				relPath = "."
			}

			fsys := ext2.NewFS(sb)
			entries, err := fsys.ReadDir(relPath)
			if err != nil {
				return err
			}
			for _, e := range entries {
				info, err := e.Info()
				if err != nil {
					fmt.Fprintf(os.Stderr, "ext2fuse: %s: %v\n", e.Name(), err)
					continue
				}
				printEntry(e.Name(), info)
			}
			return nil
		},
	}
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <image> <path>",
		Short: "write a file's contents to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sb, f, err := openImage(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			_, err = sb.CopyOut(args[1], os.Stdout)
			return err
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "print filesystem metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sb, f, err := openImage(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			i := sb.Info()
			fmt.Printf("UUID:            %s\n", i.UUID)
			fmt.Printf("Label:           %s\n", labelOrNone(i.Label))
			fmt.Printf("Block size:      %d bytes\n", i.BlockSize)
			fmt.Printf("Revision:        %d\n", i.RevLevel)
			fmt.Printf("Blocks:          %d total, %d free\n", i.TotalBlocks, i.FreeBlocks)
			fmt.Printf("Inodes:          %d total, %d free\n", i.TotalInodes, i.FreeInodes)
			fmt.Printf("Mount count:     %d of %d\n", i.MountCount, i.MaxMountCount)
			fmt.Printf("Last checked:    %s\n", i.LastCheck.Format(time.RFC1123))
			fmt.Printf("Space used:      %d bytes\n", sb.SpaceBytes()-sb.FreeSpaceBytes())
			return nil
		},
	}
}

func labelOrNone(label string) string {
	if label == "" {
		return "(none)"
	}
	return label
}

func printEntry(name string, info fs.FileInfo) {
	typeChar := "-"
	switch {
	case info.IsDir():
		typeChar = "d"
	case info.Mode()&fs.ModeSymlink != 0:
		typeChar = "l"
	case info.Mode()&fs.ModeDevice != 0:
		typeChar = "b"
		if info.Mode()&fs.ModeCharDevice != 0 {
			typeChar = "c"
		}
	}
	fmt.Printf("%s%s %8d %s %s\n", typeChar, info.Mode().Perm(), info.Size(), info.ModTime().Format("Jan 02 15:04"), name)
}
