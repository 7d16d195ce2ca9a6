package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/juster/cbmimage/disk"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "bam <file>",
		Short: "Print per-track free-block counts and the image-wide free total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			active := img.Active()
			for t := uint8(1); t <= active.Geom.MaxTrack; t++ {
				n, err := active.Geom.SectorsInTrack(t)
				if err != nil {
					continue
				}
				free := 0
				for s := uint8(0); s < n; s++ {
					state, err := active.BlockState(t, s)
					if err != nil {
						log.Print(err)
						return err
					}
					if state == disk.StateFree || state == disk.StateReallyFree {
						free++
					}
				}
				log.Printf("track %3d: %2d/%2d free", t, free, n)
			}

			total, err := active.FreeBlockTotal()
			if err != nil {
				log.Print(err)
				return err
			}
			log.Printf("total free: %d", total)
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}
