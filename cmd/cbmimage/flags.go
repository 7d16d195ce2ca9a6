package main

import "github.com/spf13/cobra"

// commonFlags holds the --format/--chdir flags shared by every command that
// opens an image.
type commonFlags struct {
	format string
	chdir  []string
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVar(&f.format, "format", "", "format hint (d64, d64-40, d64-42, d40, d71, d81, d80, d82, d1m, d2m, d4m)")
	cmd.Flags().StringArrayVar(&f.chdir, "chdir", nil, "directory entry name to descend into before running this command (repeatable)")
}
