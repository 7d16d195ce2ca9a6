package disk

import "github.com/pkg/errors"

// newRootSettings builds the root Settings frame for a newly opened image,
// dispatching to the per-format adapter constructor (spec §9 "Polymorphism
// over formats": a capability table per format variant, here a registry of
// constructor functions rather than function pointers per-instance, which
// is the idiomatic Go rendition of the same trait/interface idea).
func newRootSettings(format Format) (*Settings, error) {
	switch format {
	case FormatD64:
		return newD64RootSettings(FormatD64, newD64Geometry(), "1541"), nil
	case FormatD64_40:
		return newD64RootSettings(FormatD64_40, newD64_40Geometry(), "1541 (40 track)"), nil
	case FormatD64_42:
		return newD64RootSettings(FormatD64_42, newD64_42Geometry(), "1541 (42 track)"), nil
	case FormatD40:
		return newD64RootSettings(FormatD40, newD40Geometry(), "2040/3040"), nil
	case FormatD71:
		return newD71RootSettings(), nil
	case FormatD81:
		return newD81RootSettings(), nil
	case FormatD80:
		return newD80RootSettings(FormatD80, newD80Geometry(), "8050"), nil
	case FormatD82:
		return newD80RootSettings(FormatD82, newD82Geometry(), "8250"), nil
	case FormatD1M:
		return newCMDNativeRootSettings(FormatD1M, newD1MGeometry(), "CMD RAMLink (1MB)"), nil
	case FormatD2M:
		return newCMDNativeRootSettings(FormatD2M, newD2MGeometry(), "CMD RAMLink (2MB)"), nil
	case FormatD4M:
		return newCMDNativeRootSettings(FormatD4M, newD4MGeometry(), "CMD RAMLink (4MB)"), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "no adapter for %s", format)
	}
}

// NewDNPRootSettings builds a root frame for a raw DNP buffer of the given
// track count (DNP's size isn't in the fixed spec §6 table — callers size
// the geometry explicitly since DNP partitions are commonly created at
// whatever size a CMD hard drive's free space allows).
func NewDNPRootSettings(maxTrack uint8) *Settings {
	return newCMDNativeRootSettings(FormatDNP, newDNPGeometry(maxTrack), "CMD native (DNP)")
}

// wholeImageBounds returns the FirstBlock/LastBlock pair describing "the
// whole image" in the frame's own coordinates: LBA 1 through MaxLBA.
func wholeImageBounds(g *Geometry) (first, last BlockAddress) {
	first = BlockAddress{TS: TS{T: 1, S: 0}, LBA: 1}
	t, s, _ := g.LBAToTS(g.MaxLBA)
	last = BlockAddress{TS: TS{T: t, S: s}, LBA: g.MaxLBA}
	return first, last
}
