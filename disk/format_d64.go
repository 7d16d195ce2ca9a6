package disk

import "github.com/pkg/errors"

// newD64RootSettings builds the root frame shared by D64, D64-40, D64-42
// and D40 (spec §4.6: "D64/D40: one selector from track 1 at offset 4 of
// block (18,0), stride 4, 3 bytes"). The real 1541 BAM entry is 4 bytes per
// track: a free-count byte followed by 3 bitmap bytes, so the bitmap
// selector's offset is the entry start + 1 and the counter selector shares
// the same entry start and stride.
func newD64RootSettings(format Format, geom *Geometry, name string) *Settings {
	const bamBlockOffset = 4
	first, last := wholeImageBounds(geom)
	return &Settings{
		Format:     format,
		Name:       name,
		Geom:       geom,
		Mode:       AddressGlobal,
		DataOffset: 0,
		FirstBlock: first,
		LastBlock:  last,

		DirTracks:     []uint8{18},
		FirstDirBlock: TS{T: 18, S: 1},

		InfoBlock:      TS{T: 18, S: 0},
		HasInfoBlock:   true,
		DiskNameOffset: 0x90,

		BAMSelectors: []bamSelector{
			{startTrack: 1, block: TS{T: 18, S: 0}, offset: bamBlockOffset + 1, stride: 4, dataCount: 3},
		},
		BAMCounterSelectors: []bamSelector{
			{startTrack: 1, block: TS{T: 18, S: 0}, offset: bamBlockOffset, stride: 4},
		},

		Adapter: &AdapterFuncs{
			Chdir:        noChdirSupport,
			BAMPostFixup: noBAMPostFixup,
		},
	}
}

func noChdirSupport(parent *Settings, entry *DirEntry) (*Settings, error) {
	return nil, errors.Wrapf(ErrNotAPartDir, "%s does not support subdirectories/partitions", parent.Format)
}

func noBAMPostFixup(s *Settings, fat []FATEntry) error {
	return nil
}
