package main

import (
	"log"

	"github.com/spf13/cobra"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "close <file>",
		Short: "Open an image, unwind any --chdir frames, and close it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			if err := img.Close(); err != nil {
				log.Print(err)
				return err
			}
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}
