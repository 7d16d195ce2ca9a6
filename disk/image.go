package disk

import "github.com/pkg/errors"

// Image owns the raw byte buffer of an opened disk image, an optional error
// map, and the stack of Settings frames (spec §3). Generalizes juster-c64's
// Img (a fixed [174848]byte with no frame stack at all, since it only ever
// supported one format).
type Image struct {
	Raw      []byte
	Filename string
	Size     int
	ErrorMap []byte

	Hooks Hooks

	stack []*Settings
}

// OpenOptions configures Open.
type OpenOptions struct {
	Filename   string
	FormatHint Format
	Hooks      *Hooks
}

type sizeEntry struct {
	format     Format
	dataSize   int
	blockCount int
	ambiguous  bool // needs an explicit FormatHint to disambiguate
}

// sizeTable is the accepted-sizes table of spec §6. "+blocks" variants carry
// a trailing error map of one byte per block.
var sizeTable = []sizeEntry{
	{FormatD64, 174848, 683, false},
	{FormatD64_40, 196608, 768, true}, // also Speeddos/Dolphin/Prologic variants
	{FormatD64_42, 205312, 802, false},
	{FormatD40, 176640, 690, false},
	{FormatD71, 349696, 1366, false},
	{FormatD81, 819200, 3200, false},
	{FormatD80, 533248, 2083, false},
	{FormatD82, 1066496, 4166, false},
	{FormatD1M, 3240 * 256, 3240, false},
	{FormatD2M, 6480 * 256, 6480, false},
	{FormatD4M, 12960 * 256, 12960, false},
}

// detectFormat picks the format from the buffer size alone (with or
// without a trailing error map); file names and suffixes are not
// consulted. An explicit hint overrides the table when its own size
// matches. The one ambiguous size (D64-40, shared with the Speeddos/
// Dolphin/Prologic variants) requires an explicit hint.
func detectFormat(size int, hint Format) (format Format, dataSize int, errMapLen int, err error) {
	var plainMatch, errMapMatch *sizeEntry
	for i := range sizeTable {
		e := &sizeTable[i]
		if size == e.dataSize {
			plainMatch = e
		}
		if size == e.dataSize+e.blockCount {
			errMapMatch = e
		}
	}

	pick := func(e *sizeEntry, withErrMap bool) (Format, int, int, error) {
		if e.ambiguous && hint == FormatUnknown {
			return FormatUnknown, 0, 0, errors.Wrapf(ErrAmbiguousSize, "size %d matches multiple formats", size)
		}
		if hint != FormatUnknown && hint != e.format {
			// caller-supplied hint overrides table selection entirely, as
			// long as the hinted format's own size actually matches.
			return lookupHint(hint, size)
		}
		if withErrMap {
			return e.format, e.dataSize, e.blockCount, nil
		}
		return e.format, e.dataSize, 0, nil
	}

	switch {
	case plainMatch != nil:
		return pick(plainMatch, false)
	case errMapMatch != nil:
		return pick(errMapMatch, true)
	case hint != FormatUnknown:
		return lookupHint(hint, size)
	default:
		return FormatUnknown, 0, 0, errors.Wrapf(ErrUnknownFormat, "size %d", size)
	}
}

func lookupHint(hint Format, size int) (Format, int, int, error) {
	for _, e := range sizeTable {
		if e.format != hint {
			continue
		}
		if size == e.dataSize {
			return e.format, e.dataSize, 0, nil
		}
		if size == e.dataSize+e.blockCount {
			return e.format, e.dataSize, e.blockCount, nil
		}
	}
	return FormatUnknown, 0, 0, errors.Wrapf(ErrUnknownFormat, "hint %s does not match size %d", hint, size)
}

// Open parses raw image bytes into an Image with its root Settings frame
// populated (spec §1/§3/§6).
func Open(data []byte, opts OpenOptions) (*Image, error) {
	format, dataSize, errMapLen, err := detectFormat(len(data), opts.FormatHint)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	img := &Image{
		Filename: opts.Filename,
		Size:     dataSize,
		Raw:      data[:dataSize],
	}
	if opts.Hooks != nil {
		img.Hooks = *opts.Hooks
	} else {
		img.Hooks = NewHooks()
	}
	if errMapLen > 0 {
		img.ErrorMap = data[dataSize : dataSize+errMapLen]
	}

	root, err := newRootSettings(format)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	root.image = img
	img.stack = []*Settings{root}

	detectGEOS(root)

	return img, nil
}

// Active returns the top-of-stack Settings frame (spec §3).
func (img *Image) Active() *Settings {
	if len(img.stack) == 0 {
		return nil
	}
	return img.stack[len(img.stack)-1]
}

// Close unwinds all pushed subdirectory frames (spec §3, §4.9).
func (img *Image) Close() error {
	for len(img.stack) > 1 {
		if err := img.ChdirClose(); err != nil {
			return errors.Wrap(err, "close")
		}
	}
	img.stack = nil
	return nil
}

// detectGEOS marks root.HasGEOSBorder/GEOSBorder if the info block carries
// the GEOS signature (spec §6 "GEOS info-block signature").
func detectGEOS(root *Settings) {
	if !root.HasInfoBlock {
		return
	}
	addr, err := root.blockLBA(root.InfoBlock)
	if err != nil {
		return
	}
	data, err := root.Block(addr)
	if err != nil {
		return
	}
	const sigOff = 0xAD
	const sig = "GEOS format V1."
	if len(data) < sigOff+len(sig) {
		return
	}
	if string(data[sigOff:sigOff+len(sig)]) != sig {
		return
	}
	root.HasGEOSBorder = true
	root.GEOSBorder = TS{T: data[0xAB], S: data[0xAC]}
}
