package main

import (
	"log"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/juster/cbmimage/disk"
)

func init() {
	f := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "read <file> <t/s|lba>",
		Short: "Hex-dump one block, addressed by track/sector or by LBA",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openSession(args[0], f.format, f.chdir)
			if err != nil {
				log.Print(err)
				return err
			}
			defer img.Close()

			active := img.Active()
			addr, err := parseBlockArg(active, args[1])
			if err != nil {
				log.Print(err)
				return err
			}

			acc, err := disk.NewAccessor(active, addr)
			if err != nil {
				log.Print(err)
				return err
			}
			log.Printf("track %d sector %d (lba %d)", acc.Addr.T, acc.Addr.S, acc.Addr.LBA)
			hexDump(acc.Data)
			return nil
		},
	}
	addCommonFlags(cmd, f)
	rootCmd.AddCommand(cmd)
}

// parseBlockArg accepts either "T/S" or a bare decimal LBA.
func parseBlockArg(s *disk.Settings, arg string) (disk.BlockAddress, error) {
	if t, sec, ok := strings.Cut(arg, "/"); ok {
		track, err := strconv.Atoi(t)
		if err != nil {
			return disk.NilAddress, errors.Wrapf(err, "read: bad track %q", t)
		}
		sector, err := strconv.Atoi(sec)
		if err != nil {
			return disk.NilAddress, errors.Wrapf(err, "read: bad sector %q", sec)
		}
		return disk.NewAddressFromTS(s.Geom, uint8(track), uint8(sector))
	}
	lba, err := strconv.Atoi(arg)
	if err != nil {
		return disk.NilAddress, errors.Wrapf(err, "read: bad address %q", arg)
	}
	return disk.NewAddressFromLBA(s.Geom, lba)
}

func hexDump(data []byte) {
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]
		hex := ""
		ascii := ""
		for _, b := range row {
			hex += " " + byteHex(b)
			if b >= 0x20 && b < 0x7f {
				ascii += string(b)
			} else {
				ascii += "."
			}
		}
		log.Printf("%04x %-48s %s", off, hex, ascii)
	}
}

func byteHex(b byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}
