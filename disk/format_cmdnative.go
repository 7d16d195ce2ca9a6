package disk

import "github.com/pkg/errors"

// cmdNativeBAMSelectors lays out a CMD native BAM: one reverse-bit-order
// selector per 8 tracks, each covering exactly one 256-byte block (8 tracks
// x 32-byte bitmap = 256 bytes), starting at block (1,2) — block (1,1) is
// the first directory block (spec §9 "DNP's BAM selector layout"). No
// separate counter selectors; free counts are derived by popcount.
func cmdNativeBAMSelectors(maxTrack uint8) []bamSelector {
	const tracksPerSelector = 8
	var selectors []bamSelector
	start := uint8(1)
	sector := uint8(2)
	for start <= maxTrack {
		end := start + tracksPerSelector - 1
		if end > maxTrack {
			end = maxTrack
		}
		selectors = append(selectors, bamSelector{
			startTrack: start, endTrack: end,
			block: TS{T: 1, S: sector},
			offset: 0, stride: 32, dataCount: 32, reverse: true,
		})
		start = end + 1
		sector++
	}
	return selectors
}

// newCMDNativeRootSettings builds the root frame for D1M/D2M/D4M/DNP: when
// opened directly these are CMD FD-style outer PARTITION TABLES, not plain
// directories (spec §9 scenario "opened directly represents a partition
// table"). A normal subdirectory/partition reached via Chdir from within
// one is built by cmdNativeChdir instead.
func newCMDNativeRootSettings(format Format, geom *Geometry, name string) *Settings {
	first, last := wholeImageBounds(geom)
	return &Settings{
		Format:     format,
		Name:       name,
		Geom:       geom,
		Mode:       AddressGlobal,
		DataOffset: 0,
		FirstBlock: first,
		LastBlock:  last,

		DirTracks:     []uint8{1},
		FirstDirBlock: TS{T: 1, S: 1},

		InfoBlock:      TS{T: 1, S: 0},
		HasInfoBlock:   true,
		DiskNameOffset: 0x04,

		BAMSelectors: cmdNativeBAMSelectors(geom.MaxTrack),

		isPartitionTable: true,

		Adapter: &AdapterFuncs{
			Chdir:        cmdNativeChdir,
			BAMPostFixup: noBAMPostFixup,
		},
	}
}

// cmdNativeChdir builds the Settings frame for one partition-table row: a
// native CMD partition gets a fixed 256-sector-per-track geometry sized to
// its block count (global addressing straight into the physical image, spec
// §4.9 "CMD FD-style global" chdir); D64/D71/D81 guest partitions get the
// matching guest geometry, also globally addressed from their own block 1
// through a data offset.
func cmdNativeChdir(parent *Settings, entry *DirEntry) (*Settings, error) {
	if entry.PartitionBlockCount == 0 {
		return nil, errors.Wrapf(ErrNotAPartDir, "%s has a zero block count", entry.Name)
	}
	startLBA := entry.PartitionStartLBA

	switch entry.PartitionKind {
	case PartitionD64:
		return guestPartitionFrame(parent, entry, newD64RootSettings(FormatD64, newD64Geometry(), entry.Name), startLBA)
	case PartitionD71:
		return guestPartitionFrame(parent, entry, newD71RootSettings(), startLBA)
	case PartitionD81:
		return guestPartitionFrame(parent, entry, newD81RootSettings(), startLBA)
	case PartitionNative, PartitionSystem, PartitionUnknown:
		if startLBA < 1 || startLBA > parent.Geom.MaxLBA {
			return nil, errors.Wrapf(ErrBadLBA, "%s partition start %d", entry.Name, startLBA)
		}
		geom := newFixedGeometry(parent.Format, uint8(entry.PartitionBlockCount/256+1), 256)
		child := &Settings{
			Format:     parent.Format,
			Name:       entry.Name + " (native partition)",
			Geom:       geom,
			Mode:       AddressGlobal,
			DataOffset: parent.DataOffset + (startLBA-1)*parent.Geom.BytesPerBlock,
			FirstBlock: BlockAddress{TS: TS{T: 1, S: 0}, LBA: 1},
			LastBlock:  BlockAddress{TS: TS{}, LBA: geom.MaxLBA},

			DirTracks:     []uint8{1},
			FirstDirBlock: TS{T: 1, S: 1},

			InfoBlock:      TS{T: 1, S: 0},
			HasInfoBlock:   true,
			DiskNameOffset: 0x04,

			BAMSelectors: cmdNativeBAMSelectors(geom.MaxTrack),

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
	default:
		return nil, errors.Wrapf(ErrNotAPartDir, "%s has unrecognized partition kind", entry.Name)
	}
}

// guestPartitionFrame reparents a freshly-built D64/D71/D81 root frame to
// live inside a CMD partition: global addressing with a data offset pointed
// at the partition's absolute start.
func guestPartitionFrame(parent *Settings, entry *DirEntry, guestRoot *Settings, startLBA int) (*Settings, error) {
	guestRoot.Name = entry.Name + " (" + guestRoot.Name + " partition)"
	guestRoot.DataOffset = parent.DataOffset + (startLBA-1)*parent.Geom.BytesPerBlock
	guestRoot.parent = parent
	return guestRoot, nil
}
