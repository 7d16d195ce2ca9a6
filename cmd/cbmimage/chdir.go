package main

import (
	"log"

	"github.com/spf13/cobra"
)

func init() {
	f := &commonFlags{}
	var numerical int
	var up bool
	cmd := &cobra.Command{
		Use:   "chdir <file>",
		Short: "Descend into a partition/subdirectory (--numerical=N) or pop one (--up), then report the resulting frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			if up {
				if err := img.ChdirClose(); err != nil {
					log.Print(err)
					return err
				}
			} else {
				entry, err := nthEntry(img.Active(), numerical)
				if err != nil {
					log.Print(err)
					return err
				}
				if err := img.Chdir(entry); err != nil {
					log.Print(err)
					return err
				}
			}

			active := img.Active()
			log.Printf("now in: %s %q", active.Format, active.Name)
			if header, err := active.Header(); err == nil {
				log.Printf("%-18s %d blocks free", "\""+header.DiskName+"\"", header.FreeBlocks)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&numerical, "numerical", 0, "zero-based index of the partition/subdirectory entry to descend into")
	cmd.Flags().BoolVar(&up, "up", false, "pop the active frame instead of descending")
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}
