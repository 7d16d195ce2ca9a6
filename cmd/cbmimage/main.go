// Command cbmimage inspects Commodore 8-bit floppy disk images: directory
// listings, BAM state, and whole-image validation.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cbmimage",
	Short:         "Inspect Commodore 8-bit disk images (D64/D40/D71/D81/D80/D82/D1M/D2M/D4M)",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	log.SetFlags(0)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
