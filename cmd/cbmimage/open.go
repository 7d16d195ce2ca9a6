package main

import (
	"log"

	"github.com/spf13/cobra"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open an image and report its detected geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			active := img.Active()
			log.Printf("format: %s", active.Format)
			log.Printf("max_track: %d", active.Geom.MaxTrack)
			log.Printf("max_lba: %d", active.Geom.MaxLBA)
			if active.HasGEOSBorder {
				log.Printf("geos border: track %d sector %d", active.GEOSBorder.T, active.GEOSBorder.S)
			}
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}
