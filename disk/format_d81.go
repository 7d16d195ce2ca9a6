package disk

import "github.com/pkg/errors"

// d81BAMSelectors builds the 1581 BAM selector pair for an info block at
// infoBlock: two BAM blocks (track,1) and (track,2), each a 1-count-byte +
// 5-bitmap-byte entry per track (40 sectors/track needs 5 bits-bytes), the
// first covering tracks 1..40, the second 41..80 (spec §4.6 "D81: ... at
// offset 0x10 ... 5 bytes" — offset 0x10 is the entry start, so the bitmap
// selector sits at entry-start+1 same as the D64 family).
func d81BAMSelectors(infoBlock TS, maxTrack uint8) (bitmap, counter []bamSelector) {
	const entryOffset = 0x10
	const stride = 6
	half := maxTrack / 2
	bam1 := TS{T: infoBlock.T, S: infoBlock.S + 1}
	bam2 := TS{T: infoBlock.T, S: infoBlock.S + 2}
	bitmap = []bamSelector{
		{startTrack: 1, endTrack: half, block: bam1, offset: entryOffset + 1, stride: stride, dataCount: 5},
		{startTrack: half + 1, endTrack: maxTrack, block: bam2, offset: entryOffset + 1, stride: stride, dataCount: 5},
	}
	counter = []bamSelector{
		{startTrack: 1, endTrack: half, block: bam1, offset: entryOffset, stride: stride},
		{startTrack: half + 1, endTrack: maxTrack, block: bam2, offset: entryOffset, stride: stride},
	}
	return bitmap, counter
}

// newD81RootSettings builds the root frame for a 1581 image: header+BAM at
// track 40 (spec §4.6/§9).
func newD81RootSettings() *Settings {
	geom := newD81Geometry()
	first, last := wholeImageBounds(geom)
	bitmap, counter := d81BAMSelectors(TS{T: 40, S: 0}, geom.MaxTrack)
	return &Settings{
		Format:     FormatD81,
		Name:       "1581",
		Geom:       geom,
		Mode:       AddressGlobal,
		DataOffset: 0,
		FirstBlock: first,
		LastBlock:  last,

		DirTracks:     []uint8{40},
		FirstDirBlock: TS{T: 40, S: 3},

		InfoBlock:      TS{T: 40, S: 0},
		HasInfoBlock:   true,
		DiskNameOffset: 0x04,

		BAMSelectors:        bitmap,
		BAMCounterSelectors: counter,

		Adapter: &AdapterFuncs{
			Chdir:        d81Chdir,
			BAMPostFixup: noBAMPostFixup,
		},
	}
}

// d81Chdir builds a nested Settings frame for a 1581 CMD partition
// subdirectory: relative addressing into a sub-region sized to the entry's
// own block count, reusing the same header+BAM layout shape as the root
// (spec §4.9 "1581-style relative" chdir).
func d81Chdir(parent *Settings, entry *DirEntry) (*Settings, error) {
	if entry.Type != EntryPartition1581 {
		return nil, errors.Wrapf(ErrNotAPartDir, "%s is not a 1581 partition entry", entry.Name)
	}
	if entry.BlockCount == 0 {
		return nil, errors.Wrapf(ErrNotAPartDir, "%s has a zero block count", entry.Name)
	}

	const sectorsPerTrack = 40
	tracks := uint8((int(entry.BlockCount) + sectorsPerTrack - 1) / sectorsPerTrack)
	if tracks == 0 {
		tracks = 1
	}
	geom := newFixedGeometry(FormatD81, tracks, sectorsPerTrack)

	bitmap, counter := d81BAMSelectors(TS{T: 1, S: 0}, geom.MaxTrack)
	child := &Settings{
		Format:     FormatD81,
		Name:       entry.Name + " (partition)",
		Geom:       geom,
		Mode:       AddressRelative,
		FirstBlock: entry.StartBlock,
		LastBlock:  BlockAddress{TS: TS{}, LBA: entry.StartBlock.LBA + geom.MaxLBA - 1},

		DirTracks:     []uint8{1},
		FirstDirBlock: TS{T: 1, S: 3},

		InfoBlock:      TS{T: 1, S: 0},
		HasInfoBlock:   true,
		DiskNameOffset: 0x04,

		BAMSelectors:        bitmap,
		BAMCounterSelectors: counter,

		Adapter: &AdapterFuncs{
			Chdir:        noChdirSupport,
			BAMPostFixup: noBAMPostFixup,
		},
	}
	child.parent = parent
	if t, s, err := geom.LBAToTS(geom.MaxLBA); err == nil {
		child.LastBlock.TS = TS{T: t, S: s}
	}
	return child, nil
}
