package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/juster/cbmimage/disk"
)

func init() {
	f := &commonFlags{}
	var disklayout int
	cmd := &cobra.Command{
		Use:   "fat <file>",
		Short: "Build the derived FAT and print its owner for every block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			active := img.Active()
			fat, problems, err := active.FAT()
			if err != nil {
				log.Print(err)
				return err
			}
			for _, p := range problems {
				log.Print(p.Error())
			}

			cols := disklayout
			if cols <= 0 {
				cols = 1
			}
			for lba, entry := range fat {
				if lba == 0 {
					continue
				}
				printFATEntry(lba, entry)
				if lba%cols == 0 {
					log.Print("")
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&disklayout, "disklayout", 1, "number of blocks (one per line) to print between blank separator lines")
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}

func printFATEntry(lba int, e disk.FATEntry) {
	switch e.Kind {
	case disk.FATUnused:
		log.Printf("%5d  .", lba)
	case disk.FATSystem:
		log.Printf("%5d  S  %s", lba, e.Owner)
	case disk.FATData:
		log.Printf("%5d  D  %s", lba, e.Owner)
	default:
		log.Printf("%5d  ?", lba)
	}
}
