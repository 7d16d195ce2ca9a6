package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/juster/cbmimage/disk"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "dir <file>",
		Short: "List the active directory (or partition table)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			active := img.Active()
			if header, err := active.Header(); err == nil {
				log.Printf("%-18s %d blocks free", "\""+header.DiskName+"\"", header.FreeBlocks)
			}

			it, err := active.OpenDir()
			if err != nil {
				log.Print(err)
				return err
			}
			defer it.Close()

			idx := 0
			for {
				entry, err := it.Next()
				if err != nil {
					log.Print(err)
					return err
				}
				if entry == nil {
					break
				}
				printEntry(idx, entry)
				idx++
			}
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}

func printEntry(idx int, e *disk.DirEntry) {
	if e.PartitionKind != disk.PartitionUnknown {
		log.Printf("%3d  %-16q  partition  start=%d blocks=%d", idx, e.Name, e.PartitionStartLBA, e.PartitionBlockCount)
		return
	}
	flags := ""
	if e.Locked {
		flags += "<"
	}
	if !e.Closed {
		flags += "*"
	}
	log.Printf("%3d  %-5d %-16q %-4s%s", idx, e.BlockCount, e.Name, e.Type, flags)
}
