package disk

import "github.com/pkg/errors"

const bytesPerBlock = 256

// Format tags a disk family. D64/D71/D40 share the same zoned track table
// (with D40's track-18 sector count differing from D64's); D80/D82 share a
// table with twice the tracks; D1M/D2M/D4M use fixed tables of 81 tracks
// with 40, 80 and 160 sectors; DNP uses a fixed 256-sector table.
type Format int

const (
	FormatUnknown Format = iota
	FormatD64
	FormatD64_40
	FormatD64_42
	FormatD40
	FormatD71
	FormatD81
	FormatD80
	FormatD82
	FormatD1M
	FormatD2M
	FormatD4M
	FormatDNP
)

func (f Format) String() string {
	switch f {
	case FormatD64:
		return "D64"
	case FormatD64_40:
		return "D64 (40 track)"
	case FormatD64_42:
		return "D64 (42 track)"
	case FormatD40:
		return "D40"
	case FormatD71:
		return "D71"
	case FormatD81:
		return "D81"
	case FormatD80:
		return "D80"
	case FormatD82:
		return "D82"
	case FormatD1M:
		return "D1M"
	case FormatD2M:
		return "D2M"
	case FormatD4M:
		return "D4M"
	case FormatDNP:
		return "DNP"
	default:
		return "unknown"
	}
}

// zone is one run of tracks sharing a sector count, generalizing
// juster-c64/disk.go's geom/geometryTable (trackMin/trackMax/sectorCount).
type zone struct {
	trackMin, trackMax uint8
	sectorCount        uint8
}

// Geometry describes a format's track/sector layout and precomputes the
// O(1) track->LBA-start table spec §4.1 calls for.
type Geometry struct {
	Format        Format
	MaxTrack      uint8
	BytesPerBlock int
	MaxLBA        int

	zones         []zone
	trackLBAStart []int // index 1..MaxTrack -> LBA of sector 0 of that track
}

func newZonedGeometry(f Format, zones []zone) *Geometry {
	g := &Geometry{Format: f, BytesPerBlock: bytesPerBlock, zones: zones}
	for _, z := range zones {
		if z.trackMax > g.MaxTrack {
			g.MaxTrack = z.trackMax
		}
	}
	g.trackLBAStart = make([]int, g.MaxTrack+1)
	lba := 1
	for t := uint8(1); t <= g.MaxTrack; t++ {
		g.trackLBAStart[t] = lba
		n, err := g.SectorsInTrack(t)
		if err != nil {
			panic(err) // zones must cover 1..MaxTrack contiguously
		}
		lba += int(n)
	}
	g.MaxLBA = lba - 1
	return g
}

// newFixedGeometry builds the generic fixed-sector-count fallback of spec
// §4.1: lba = (track-1)*maxSector + sector + 1.
func newFixedGeometry(f Format, maxTrack, sectorsPerTrack uint8) *Geometry {
	return newZonedGeometry(f, []zone{{1, maxTrack, sectorsPerTrack}})
}

// SectorsInTrack returns the number of sectors on the given track.
func (g *Geometry) SectorsInTrack(track uint8) (uint8, error) {
	for _, z := range g.zones {
		if track >= z.trackMin && track <= z.trackMax {
			return z.sectorCount, nil
		}
	}
	return 0, errors.Wrapf(ErrBadTrack, "track %d", track)
}

// LBAStart returns the LBA of sector 0 of the given track (O(1)).
func (g *Geometry) LBAStart(track uint8) (int, error) {
	if track < 1 || int(track) >= len(g.trackLBAStart) {
		return 0, errors.Wrapf(ErrBadTrack, "track %d", track)
	}
	return g.trackLBAStart[track], nil
}

// TSToLBA converts (track,sector) to a 1-based LBA.
func (g *Geometry) TSToLBA(track, sector uint8) (int, error) {
	n, err := g.SectorsInTrack(track)
	if err != nil {
		return 0, err
	}
	if sector >= n {
		return 0, errors.Wrapf(ErrBadSector, "track %d sector %d (max %d)", track, sector, n)
	}
	start, err := g.LBAStart(track)
	if err != nil {
		return 0, err
	}
	return start + int(sector), nil
}

// LBAToTS converts a 1-based LBA to (track,sector).
func (g *Geometry) LBAToTS(lba int) (track, sector uint8, err error) {
	if lba < 1 || lba > g.MaxLBA {
		return 0, 0, errors.Wrapf(ErrBadLBA, "lba %d (max %d)", lba, g.MaxLBA)
	}
	for t := uint8(1); t <= g.MaxTrack; t++ {
		start := g.trackLBAStart[t]
		n, _ := g.SectorsInTrack(t)
		if lba < start+int(n) {
			return t, uint8(lba - start), nil
		}
	}
	return 0, 0, errors.Wrapf(ErrBadLBA, "lba %d (max %d)", lba, g.MaxLBA)
}

// --- concrete per-format geometry tables ---

// D64/D71 zoned table: tracks 1-17 have 21 sectors, 18-24 have 19, 25-30
// have 18, 31-35(+) have 17. D64 stops at 35 (+40/+42 variants extend the
// last zone). D40 (2040/3040 drives) differs only in the 18-24 zone having
// 20 sectors instead of 19 (spec §4.1).
func d64Zones(maxTrack uint8) []zone {
	return []zone{
		{1, 17, 21},
		{18, 24, 19},
		{25, 30, 18},
		{31, maxTrack, 17},
	}
}

func d40Zones(maxTrack uint8) []zone {
	return []zone{
		{1, 17, 21},
		{18, 24, 20},
		{25, 30, 18},
		{31, maxTrack, 17},
	}
}

func newD64Geometry() *Geometry    { return newZonedGeometry(FormatD64, d64Zones(35)) }
func newD64_40Geometry() *Geometry { return newZonedGeometry(FormatD64_40, d64Zones(40)) }
func newD64_42Geometry() *Geometry { return newZonedGeometry(FormatD64_42, d64Zones(42)) }
func newD40Geometry() *Geometry    { return newZonedGeometry(FormatD40, d40Zones(35)) }

// D71 mirrors the D64 table for tracks 36..70 (spec S3).
func newD71Geometry() *Geometry {
	z := d64Zones(35)
	mirrored := make([]zone, 0, len(z)*2)
	mirrored = append(mirrored, z...)
	for _, zz := range z {
		mirrored = append(mirrored, zone{zz.trackMin + 35, zz.trackMax + 35, zz.sectorCount})
	}
	return newZonedGeometry(FormatD71, mirrored)
}

// D81: fixed 40 sectors/track, 80 tracks.
func newD81Geometry() *Geometry { return newFixedGeometry(FormatD81, 80, 40) }

// D80/D82: zoned, CBM 8050/8250 layout.
func d80Zones(maxTrack uint8) []zone {
	return []zone{
		{1, 39, 29},
		{40, 53, 27},
		{54, 64, 25},
		{65, maxTrack, 23},
	}
}

func newD80Geometry() *Geometry { return newZonedGeometry(FormatD80, d80Zones(77)) }

func newD82Geometry() *Geometry {
	z := d80Zones(77)
	mirrored := make([]zone, 0, len(z)*2)
	mirrored = append(mirrored, z...)
	for _, zz := range z {
		mirrored = append(mirrored, zone{zz.trackMin + 77, zz.trackMax + 77, zz.sectorCount})
	}
	return newZonedGeometry(FormatD82, mirrored)
}

// D1M/D2M/D4M: fixed sector count per track (CMD RAMLink/FD native
// "partition" media, 81 tracks), 256-byte blocks like the rest.
func newD1MGeometry() *Geometry { return newFixedGeometry(FormatD1M, 81, 40) }
func newD2MGeometry() *Geometry { return newFixedGeometry(FormatD2M, 81, 80) }
func newD4MGeometry() *Geometry { return newFixedGeometry(FormatD4M, 81, 160) }

// DNP: CMD FD native partition, up to 255 tracks of 256 sectors.
func newDNPGeometry(maxTrack uint8) *Geometry {
	return newFixedGeometry(FormatDNP, maxTrack, 256)
}
