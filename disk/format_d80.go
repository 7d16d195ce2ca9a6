package disk

// d80BAMZones lays out the CBM 8050/8250 BAM: a single track (38) with up
// to four 256-byte blocks, each holding a 1-count-byte + 4-bitmap-byte (29
// sectors needs 4 bytes) entry per track, stride 5, entry start 0x06. 8050
// (single-sided, 77 tracks) only needs blocks 0 and 3; 8250 (double-sided,
// 154 tracks after the D80 zone table mirrors) uses all four (spec §4.6,
// §9 BAM selector table).
func d80BAMZones(maxTrack uint8) (bitmap, counter []bamSelector) {
	const entryOffset = 0x06
	const stride = 5
	tracksPerBlock := uint8(50)
	blocks := []TS{{T: 38, S: 0}, {T: 38, S: 3}, {T: 38, S: 6}, {T: 38, S: 9}}

	start := uint8(1)
	for _, block := range blocks {
		if start > maxTrack {
			break
		}
		end := start + tracksPerBlock - 1
		if end > maxTrack {
			end = maxTrack
		}
		bitmap = append(bitmap, bamSelector{startTrack: start, endTrack: end, block: block, offset: entryOffset + 1, stride: stride, dataCount: 4})
		counter = append(counter, bamSelector{startTrack: start, endTrack: end, block: block, offset: entryOffset, stride: stride})
		start = end + 1
	}
	return bitmap, counter
}

// newD80RootSettings builds the shared root frame for D80 (8050) and D82
// (8250): header at (39,0), directory starting at (39,1), BAM on track 38
// (spec §4.6 "D80/D82 need tracks 38 AND 39 excluded").
func newD80RootSettings(format Format, geom *Geometry, name string) *Settings {
	first, last := wholeImageBounds(geom)
	bitmap, counter := d80BAMZones(geom.MaxTrack)
	return &Settings{
		Format:     format,
		Name:       name,
		Geom:       geom,
		Mode:       AddressGlobal,
		DataOffset: 0,
		FirstBlock: first,
		LastBlock:  last,

		DirTracks:     []uint8{38, 39},
		FirstDirBlock: TS{T: 39, S: 1},

		InfoBlock:      TS{T: 39, S: 0},
		HasInfoBlock:   true,
		DiskNameOffset: 0x06,

		BAMSelectors:        bitmap,
		BAMCounterSelectors: counter,

		Adapter: &AdapterFuncs{
			Chdir:        noChdirSupport,
			BAMPostFixup: noBAMPostFixup,
		},
	}
}
