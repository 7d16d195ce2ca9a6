package disk

import "github.com/pkg/errors"

// RelFile describes a REL file's side-sector structure (spec §4.7 REL
// fields, §9 "REL files use side sectors").
type RelFile struct {
	RecordLength uint8

	// SideSectors holds every side-sector block in file order. 1541/1571
	// REL files have at most 6 (a single side-sector group); 1581/CMD REL
	// files add a super-side-sector layer with up to 126 groups of 6.
	SideSectors []BlockAddress

	// SuperSideSector is valid (IsValid()) only when hasSuperSideSector.
	SuperSideSector BlockAddress
}

const (
	sideSectorsPerGroup   = 6
	superSideSectorGroups = 126
	superSideSectorMagic  = 0xFE

	// superSideSectorGroupListOff is where the group head (track,sector)
	// pairs start, right after the link header and magic byte.
	superSideSectorGroupListOff = 0x03

	// sideSectorRecordLenOff is where a side-sector block stores the
	// record length it was built for, cross-checked against the directory
	// entry's own record length.
	sideSectorRecordLenOff = 0x03

	// sideSectorMemberListOff is where a member block's copy of the group's
	// member-address enumeration starts (sideSectorsPerGroup entries).
	sideSectorMemberListOff = 0x04

	// sideSectorDataPairsOff/sideSectorDataPairsCount is the table of
	// (track,sector) pairs tracking the file's own data chain.
	sideSectorDataPairsOff   = 0x10
	sideSectorDataPairsCount = 120
)

// WalkRelSideSectors resolves a REL file's full side-sector chain starting
// from the directory entry's side-sector pointer, following the
// super-side-sector layer first when the active frame uses one (spec §4.7/
// §9 "super-side-sectors: groups of six, integrity checks").
func (s *Settings) WalkRelSideSectors(entry *DirEntry) (*RelFile, error) {
	if entry.Type != EntryREL {
		return nil, errors.New("disk: entry is not a REL file")
	}
	rel := &RelFile{RecordLength: entry.RecordLength}

	if !entry.SideSectorBlock.IsValid() {
		return rel, nil
	}

	// A fresh chain walker advancing in lockstep with the side-sector data
	// pairs, per spec §4.8's "each pair must equal the current position of
	// a chain walker advancing in parallel". Left nil when the entry has no
	// data chain of its own (e.g. a zero-length REL file), in which case the
	// data-pair cross-check is skipped.
	var dataChain *Chain
	if entry.StartBlock.IsValid() {
		ch, err := NewChain(s, entry.StartBlock)
		if err != nil {
			return nil, errors.Wrap(err, "rel data chain")
		}
		dataChain = ch
	}

	if !s.hasSuperSideSector {
		group, err := s.walkSideSectorGroup(entry.SideSectorBlock, entry.RecordLength, dataChain)
		if err != nil {
			return nil, err
		}
		rel.SideSectors = group
		return rel, nil
	}

	rel.SuperSideSector = entry.SideSectorBlock
	data, err := s.Block(entry.SideSectorBlock)
	if err != nil {
		return nil, errors.Wrap(err, "super side sector")
	}
	if err := checkSuperSideSector(data); err != nil {
		return nil, errors.Wrap(err, "super side sector")
	}

	ld := NewLoopDetector(s.Geom)
	if _, err := ld.Mark(entry.SideSectorBlock); err != nil {
		return nil, errors.Wrap(err, "super side sector")
	}

	for g := 0; g < superSideSectorGroups; g++ {
		off := superSideSectorGroupListOff + g*2
		t, sec := data[off], data[off+1]
		if t == 0 && sec == 0 {
			break
		}
		head, err := NewAddressFromTS(s.Geom, t, sec)
		if err != nil {
			return nil, errors.Wrapf(err, "super side sector group %d", g)
		}
		group, err := s.walkSideSectorGroupWithDetector(head, entry.RecordLength, ld, dataChain)
		if err != nil {
			return nil, errors.Wrapf(err, "super side sector group %d", g)
		}
		rel.SideSectors = append(rel.SideSectors, group...)
	}
	return rel, nil
}

// checkSuperSideSector validates a super-side-sector block's structure per
// spec §9's "integrity checks": the link header (0x00/0x01) must equal the
// group-0 head stored at 0x03/0x04, offset 0x02 must carry the 0xFE magic
// byte, and every group-list slot past the first empty one must stay zero.
func checkSuperSideSector(data []byte) error {
	if len(data) < superSideSectorGroupListOff+superSideSectorGroups*2 {
		return errors.Wrap(ErrSuperSideSectorBad, "block too short")
	}
	if data[0x02] != superSideSectorMagic {
		return errors.Wrap(ErrSuperSideSectorBad, "missing 0xFE magic byte")
	}
	if data[0x00] != data[superSideSectorGroupListOff] || data[0x01] != data[superSideSectorGroupListOff+1] {
		return errors.Wrap(ErrSuperSideSectorBad, "link header does not match group 0 head")
	}
	ended := false
	for g := 0; g < superSideSectorGroups; g++ {
		off := superSideSectorGroupListOff + g*2
		t, sec := data[off], data[off+1]
		if !ended {
			if t == 0 && sec == 0 {
				ended = true
			}
			continue
		}
		if t != 0 || sec != 0 {
			return errors.Wrap(ErrSuperSideSectorBad, "non-zero group slot after the last populated one")
		}
	}
	return nil
}

func (s *Settings) walkSideSectorGroup(head BlockAddress, recLen uint8, dataChain *Chain) ([]BlockAddress, error) {
	return s.walkSideSectorGroupWithDetector(head, recLen, NewLoopDetector(s.Geom), dataChain)
}

// walkSideSectorGroupWithDetector follows one side-sector group's own
// sibling-block chain (side sector N points to side sector N+1 at the
// regular next-track/next-sector header, not via the file's data chain),
// cross-checking each sector's recorded record length, its copy of the
// group's member enumeration, and its table of data-chain pairs against a
// chain walker advancing in parallel (spec §9 "integrity checks").
func (s *Settings) walkSideSectorGroupWithDetector(head BlockAddress, recLen uint8, ld *LoopDetector, dataChain *Chain) ([]BlockAddress, error) {
	var group []BlockAddress
	addr := head
	for i := 0; i < sideSectorsPerGroup; i++ {
		if !addr.IsValid() {
			break
		}
		already, err := ld.Mark(addr)
		if err != nil {
			return nil, errors.Wrap(err, "side sector group")
		}
		if already {
			return nil, errors.Wrap(ErrLoopDetected, "side sector group")
		}
		data, err := s.Block(addr)
		if err != nil {
			return nil, errors.Wrap(err, "side sector group")
		}
		if data[sideSectorRecordLenOff] != recLen {
			return nil, errors.Wrapf(ErrSideSectorMismatch, "side sector record length %d != entry %d", data[sideSectorRecordLenOff], recLen)
		}

		memberOff := sideSectorMemberListOff + i*2
		if data[memberOff] != addr.T || data[memberOff+1] != addr.S {
			return nil, errors.Wrapf(ErrSideSectorMismatch, "side sector group member %d does not reference itself at offset 0x%02x", i, memberOff)
		}

		if err := checkSideSectorDataPairs(data, dataChain); err != nil {
			return nil, errors.Wrapf(err, "side sector group member %d", i)
		}

		group = append(group, addr)

		nt, ns := data[0], data[1]
		if nt == 0 && ns == 0 {
			break
		}
		next, err := NewAddressFromTS(s.Geom, nt, ns)
		if err != nil {
			return nil, errors.Wrap(err, "side sector group")
		}
		addr = next
	}
	return group, nil
}

// checkSideSectorDataPairs walks one side-sector block's table of
// (track,sector) pairs (offsets 0x10..0xFF) against dataChain, which tracks
// the file's own data chain in parallel. A (0,0) pair ends the side-sector
// data and must coincide with the data chain's own termination; any other
// mismatch is a corruption (spec §9 "a (0,0) pair terminates the
// side-sector data and must match file-chain termination").
func checkSideSectorDataPairs(data []byte, dataChain *Chain) error {
	exhausted := dataChain == nil
	for p := 0; p < sideSectorDataPairsCount; p++ {
		off := sideSectorDataPairsOff + p*2
		t, sec := data[off], data[off+1]
		if t == 0 && sec == 0 {
			if !exhausted {
				return errors.Wrap(ErrSideSectorMismatch, "side sector data ends before the file chain does")
			}
			return nil
		}
		if exhausted {
			return errors.Wrap(ErrSideSectorMismatch, "side sector data pair after the file chain ended")
		}
		cur := dataChain.Current()
		if cur.T != t || cur.S != sec {
			return errors.Wrapf(ErrSideSectorMismatch, "side sector data pair (%d,%d) does not match file chain position (%d,%d)", t, sec, cur.T, cur.S)
		}
		if dataChain.IsDone() {
			exhausted = true
			continue
		}
		if err := dataChain.Advance(); err != nil {
			return errors.Wrap(err, "side sector data pair advance")
		}
	}
	return nil
}
