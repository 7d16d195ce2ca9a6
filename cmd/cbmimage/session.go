package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/juster/cbmimage/disk"
)

var formatHints = map[string]disk.Format{
	"d64":    disk.FormatD64,
	"d64-40": disk.FormatD64_40,
	"d64-42": disk.FormatD64_42,
	"d40":    disk.FormatD40,
	"d71":    disk.FormatD71,
	"d81":    disk.FormatD81,
	"d80":    disk.FormatD80,
	"d82":    disk.FormatD82,
	"d1m":    disk.FormatD1M,
	"d2m":    disk.FormatD2M,
	"d4m":    disk.FormatD4M,
}

// openSession opens file, applying an explicit format hint (empty string
// means "guess from size") and a chain of --chdir path components applied
// in order, matching spec §4.9's chdir as a CLI-visible operation.
func openSession(file, hint string, chdirPath []string) (*disk.Image, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	var format disk.Format
	if hint != "" {
		f, ok := formatHints[strings.ToLower(hint)]
		if !ok {
			return nil, errors.Errorf("open: unknown format hint %q", hint)
		}
		format = f
	}

	img, err := disk.Open(data, disk.OpenOptions{Filename: file, FormatHint: format})
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	for _, name := range chdirPath {
		if err := chdirByName(img, name); err != nil {
			img.Close()
			return nil, errors.Wrapf(err, "chdir %q", name)
		}
	}
	return img, nil
}

// chdirByName finds a directory entry named name in the active frame and
// chdirs into it.
func chdirByName(img *disk.Image, name string) error {
	active := img.Active()
	it, err := active.OpenDir()
	if err != nil {
		return err
	}
	defer it.Close()
	for {
		entry, err := it.Next()
		if err != nil {
			return err
		}
		if entry == nil {
			return errors.Errorf("no entry named %q", name)
		}
		if entry.Name == name {
			return img.Chdir(entry)
		}
	}
}
