package main

import (
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/juster/cbmimage/disk"
)

func init() {
	f := &commonFlags{}
	var numerical int
	cmd := &cobra.Command{
		Use:   "showfile <file>",
		Short: "Hex-dump the contents of the Nth directory entry (see --numerical)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			active := img.Active()
			entry, err := nthEntry(active, numerical)
			if err != nil {
				log.Print(err)
				return err
			}
			if entry.Type == disk.EntryPartition1581 || entry.Type == disk.EntryCMDNative {
				return errors.Errorf("showfile: entry %d (%q) is a partition, use --chdir instead", numerical, entry.Name)
			}

			fsys := disk.NewFS(img)
			rf, err := fsys.Open(entry.Name + "." + strings.ToLower(entry.Type.String()))
			if err != nil {
				log.Print(err)
				return err
			}
			defer rf.Close()

			data, err := io.ReadAll(rf)
			if err != nil {
				log.Print(err)
				return err
			}
			log.Printf("%q (%d bytes)", entry.Name, len(data))
			hexDump(data)
			return nil
		},
	}
	cmd.Flags().IntVar(&numerical, "numerical", 0, "zero-based index of the directory entry to show")
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}

// nthEntry returns the numerical-th (zero-based) entry of s's active
// directory listing.
func nthEntry(s *disk.Settings, numerical int) (*disk.DirEntry, error) {
	it, err := s.OpenDir()
	if err != nil {
		return nil, err
	}
	defer it.Close()
	idx := 0
	for {
		entry, err := it.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, errors.Errorf("showfile: no entry at index %d", numerical)
		}
		if idx == numerical {
			return entry, nil
		}
		idx++
	}
}
