package disk

import "github.com/pkg/errors"

// EntryType is the directory entry type tag of spec §6 (low nibble of the
// type byte).
type EntryType uint8

const (
	EntryDEL EntryType = iota
	EntrySEQ
	EntryPRG
	EntryUSR
	EntryREL
	EntryPartition1581
	EntryCMDNative
)

func (t EntryType) String() string {
	switch t {
	case EntryDEL:
		return "DEL"
	case EntrySEQ:
		return "SEQ"
	case EntryPRG:
		return "PRG"
	case EntryUSR:
		return "USR"
	case EntryREL:
		return "REL"
	case EntryPartition1581:
		return "CBM" // 1581 partition entries print as CBM in real DOS
	case EntryCMDNative:
		return "NATV"
	default:
		return "???"
	}
}

// PartitionKind classifies a partition-table row (spec §4.7, active frame
// is a partition table).
type PartitionKind uint8

const (
	PartitionUnknown PartitionKind = iota
	PartitionNative
	PartitionD64
	PartitionD71
	PartitionD81
	PartitionSystem
)

const (
	typeLocked = 0x40
	typeClosed = 0x80
	typeMask   = 0x0F
)

// DirEntry is the externally visible projection of one 32-byte directory
// slot (spec §3, §6).
type DirEntry struct {
	Name   string
	Suffix string
	Raw    [16]byte

	Type    EntryType
	Locked  bool
	Closed  bool
	IsGEOS  bool
	GEOSVLIR bool
	Valid   bool

	HasDateTime bool
	Year, Month, Day, Hour, Minute uint8

	StartBlock BlockAddress
	BlockCount uint16

	// REL
	SideSectorBlock BlockAddress
	RecordLength    uint8

	// GEOS
	GEOSInfoBlock BlockAddress
	GEOSFileType  uint8

	// partition-table row (only set when the active frame is a partition table)
	PartitionKind       PartitionKind
	PartitionStartLBA   int
	PartitionBlockCount int

	// internal enumerator bookkeeping
	dirBlock TS
	slot     int
}

// DirHeader is the directory header (disk name + free-block total); absent
// when the active frame is a partition table (spec §4.7).
type DirHeader struct {
	DiskName   string
	FreeBlocks int
}

// Header reads the disk name and computes the free-block total.
func (s *Settings) Header() (*DirHeader, error) {
	if s.isPartitionTable {
		return nil, errors.New("disk: partition-table frames have no header")
	}
	addr, err := s.blockLBA(s.InfoBlock)
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	data, err := s.Block(addr)
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	if s.DiskNameOffset+16 > len(data) {
		return nil, errors.New("disk: disk name offset exceeds block")
	}
	free, err := s.FreeBlockTotal()
	if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	return &DirHeader{
		DiskName:   UnpadBytes(data[s.DiskNameOffset : s.DiskNameOffset+16]),
		FreeBlocks: free,
	}, nil
}

// DirIterator enumerates directory entries by walking the directory chain
// with a Chain Walker, 8 entries per 256-byte block (spec §4.7).
type DirIterator struct {
	s     *Settings
	chain *Chain
	slot  int
	done  bool
}

// OpenDir starts enumeration at the first directory block.
func (s *Settings) OpenDir() (*DirIterator, error) {
	addr, err := s.blockLBA(s.FirstDirBlock)
	if err != nil {
		return nil, errors.Wrap(err, "opendir")
	}
	ch, err := NewChain(s, addr)
	if err != nil {
		return nil, errors.Wrap(err, "opendir")
	}
	return &DirIterator{s: s, chain: ch}, nil
}

// Close releases the iterator's chain/loop detector.
func (it *DirIterator) Close() error {
	it.done = true
	it.chain = nil
	return nil
}

// Next returns the next directory entry, or (nil, nil) when enumeration
// terminates (chain terminator or loop detector firing), skipping deleted/
// empty slots silently.
func (it *DirIterator) Next() (*DirEntry, error) {
	if it.done || it.chain == nil {
		return nil, nil
	}
	for {
		if it.slot >= 8 {
			it.slot = 0
			if it.chain.IsDone() {
				it.done = true
				return nil, nil
			}
			if err := it.chain.Advance(); err != nil {
				it.done = true
				if it.chain.IsLoop() {
					return nil, errors.Wrap(ErrLoopDetected, "directory enumeration")
				}
				return nil, nil
			}
		}

		data := it.chain.Data()
		off := it.slot * 32
		slotData := data[off : off+32]
		slotPos := it.slot
		it.slot++

		if slotData[2] == 0 && slotData[3] == 0 && slotData[5] == 0 {
			continue // deleted/empty
		}

		var entry *DirEntry
		var err error
		if it.s.isPartitionTable {
			entry, err = parsePartitionRow(it.s, slotData)
		} else {
			entry, err = parseDirEntry(it.s, slotData)
		}
		if err != nil {
			return nil, errors.Wrap(err, "directory enumeration")
		}
		entry.dirBlock = it.chain.Current().TS
		entry.slot = slotPos
		return entry, nil
	}
}

// parseDirEntry decodes a regular (non-partition-table) 32-byte slot per
// the byte layout of spec §6.
func parseDirEntry(s *Settings, raw []byte) (*DirEntry, error) {
	e := &DirEntry{Valid: true}

	typeByte := raw[0x02]
	e.Type = EntryType(typeByte & typeMask)
	e.Locked = typeByte&typeLocked != 0
	e.Closed = typeByte&typeClosed != 0

	startT, startS := raw[0x03], raw[0x04]
	if startT != 0 || startS != 0 {
		addr, err := NewAddressFromTS(s.Geom, startT, startS)
		if err == nil {
			e.StartBlock = addr
		}
	}

	var name16 [16]byte
	copy(name16[:], raw[0x05:0x15])
	e.Raw = name16
	e.Name, e.Suffix = splitNameSuffix(name16)

	// Offsets 0x15/0x16/0x17 are reinterpreted by entry kind: REL files
	// store the side-sector (t,s) and record length there; everything else
	// reuses the same bytes for a GEOS info-block pointer and file type,
	// with the VLIR flag at 0x18 (spec §6 on-disk block layout).
	if e.Type == EntryREL {
		ssT, ssS := raw[0x15], raw[0x16]
		if ssT != 0 || ssS != 0 {
			if addr, err := NewAddressFromTS(s.Geom, ssT, ssS); err == nil {
				e.SideSectorBlock = addr
			}
		}
		e.RecordLength = raw[0x17]
	} else {
		infoT, infoS := raw[0x15], raw[0x16]
		fileType, vlir := raw[0x17], raw[0x18]
		if infoT != 0 || infoS != 0 || fileType != 0 || vlir != 0 {
			e.IsGEOS = true
			e.GEOSFileType = fileType
			e.GEOSVLIR = vlir != 0
			if infoT != 0 || infoS != 0 {
				if addr, err := NewAddressFromTS(s.Geom, infoT, infoS); err == nil {
					e.GEOSInfoBlock = addr
				}
			}
		}
	}

	e.Year, e.Month, e.Day, e.Hour, e.Minute = raw[0x19], raw[0x1A], raw[0x1B], raw[0x1C], raw[0x1D]
	if e.Year != 0 || e.Month != 0 || e.Day != 0 || e.Hour != 0 || e.Minute != 0 {
		e.HasDateTime = true
	}

	e.BlockCount = uint16(raw[0x1E]) | uint16(raw[0x1F])<<8

	return e, nil
}

// parsePartitionRow decodes a partition-table row: type byte is a
// PartitionKind, start block is lba*2+1 (16-bit LE), block count is
// count*2 (16-bit LE) — spec §4.7/§9's CMD FD 512-byte-physical-block
// factor.
func parsePartitionRow(s *Settings, raw []byte) (*DirEntry, error) {
	e := &DirEntry{Valid: true}

	switch raw[0x02] {
	case 0:
		e.PartitionKind = PartitionNative
	case 1:
		e.PartitionKind = PartitionD64
	case 2:
		e.PartitionKind = PartitionD71
	case 3:
		e.PartitionKind = PartitionD81
	case 4:
		e.PartitionKind = PartitionSystem
	default:
		e.PartitionKind = PartitionUnknown
	}

	var name16 [16]byte
	copy(name16[:], raw[0x05:0x15])
	e.Raw = name16
	e.Name, e.Suffix = splitNameSuffix(name16)

	startRaw := int(raw[0x03]) | int(raw[0x04])<<8
	e.PartitionStartLBA = (startRaw - 1) / 2
	countRaw := int(raw[0x1E]) | int(raw[0x1F])<<8
	e.PartitionBlockCount = countRaw / 2

	return e, nil
}
