package disk

// newD71RootSettings builds the root frame for a 1571 image: the BAM for
// tracks 1-35 mirrors D64's layout at (18,0); tracks 36-70 get their own
// bitmap-only selector at (53,0), 3 bytes/track, with no separate counter
// (derived via popcount — spec §4.6 falls back to this whenever no counter
// selector covers a track).
func newD71RootSettings() *Settings {
	const bamBlockOffset = 4
	geom := newD71Geometry()
	first, last := wholeImageBounds(geom)
	return &Settings{
		Format:     FormatD71,
		Name:       "1571",
		Geom:       geom,
		Mode:       AddressGlobal,
		DataOffset: 0,
		FirstBlock: first,
		LastBlock:  last,

		DirTracks:     []uint8{18, 53},
		FirstDirBlock: TS{T: 18, S: 1},

		InfoBlock:      TS{T: 18, S: 0},
		HasInfoBlock:   true,
		DiskNameOffset: 0x90,

		BAMSelectors: []bamSelector{
			{startTrack: 1, endTrack: 35, block: TS{T: 18, S: 0}, offset: bamBlockOffset + 1, stride: 4, dataCount: 3},
			{startTrack: 36, endTrack: 70, block: TS{T: 53, S: 0}, offset: 0, stride: 3, dataCount: 3},
		},
		BAMCounterSelectors: []bamSelector{
			{startTrack: 1, endTrack: 35, block: TS{T: 18, S: 0}, offset: bamBlockOffset, stride: 4},
		},

		Adapter: &AdapterFuncs{
			Chdir:        noChdirSupport,
			BAMPostFixup: noBAMPostFixup,
		},
	}
}
