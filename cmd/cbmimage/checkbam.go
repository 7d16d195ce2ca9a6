package main

import (
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "checkbam <file>",
		Short: "Check BAM internal consistency (bits beyond track length, counter vs popcount)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			problems := img.Active().CheckBAMConsistency()
			for _, p := range problems {
				log.Print(p.Error())
			}
			if len(problems) > 0 {
				return errors.Errorf("bam: %d problem(s) found", len(problems))
			}
			log.Print("bam ok")
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}
