package main

import (
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Build the derived FAT and cross-check it against the BAM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			problems, err := img.Active().Validate()
			if err != nil {
				log.Print(err)
				return err
			}
			for _, p := range problems {
				log.Print(p.Error())
			}
			if len(problems) > 0 {
				return errors.Errorf("validate: %d problem(s) found", len(problems))
			}
			log.Print("validate ok")
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}
