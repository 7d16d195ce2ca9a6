package disk

import "github.com/pkg/errors"

const vlirRecordCount = 127

// VLIRRecord is one slot of a GEOS VLIR record map (spec §4.7/§9 "GEOS VLIR:
// 127-pair record maps").
type VLIRRecord struct {
	Index  int
	Absent bool // (0,0xFF) sentinel: record exists but has no data
	Start  BlockAddress
}

// GEOSInfo is the decoded GEOS info-block header (spec §6 "GEOS info-block
// signature").
type GEOSInfo struct {
	FileType   uint8
	StructType uint8 // 0 = sequential, 1 = VLIR
	IconBlock  TS
}

// ReadGEOSInfo decodes the fixed fields of a GEOS info block.
func (s *Settings) ReadGEOSInfo(addr BlockAddress) (*GEOSInfo, error) {
	data, err := s.Block(addr)
	if err != nil {
		return nil, errors.Wrap(err, "geos info")
	}
	if len(data) < 0x49 {
		return nil, errors.New("disk: geos info block too short")
	}
	return &GEOSInfo{
		FileType:   data[0x03],
		StructType: data[0x04],
		IconBlock:  TS{T: data[0x00], S: data[0x01]},
	}, nil
}

// WalkVLIR decodes a VLIR file's record map: entry.StartBlock names the
// VLIR block itself for a VLIR file (not a data chain head), holding 127
// (track,sector) pairs at offset 2. (0,0) terminates the record map — any
// non-zero data past it is corruption; (0,0xFF) marks a record that exists
// with no allocated blocks (spec §9 "(0,0) terminator and (0,0xFF) absent
// sentinel").
func (s *Settings) WalkVLIR(entry *DirEntry) ([]VLIRRecord, error) {
	if !entry.GEOSVLIR {
		return nil, errors.New("disk: entry is not a GEOS VLIR file")
	}
	if !entry.StartBlock.IsValid() {
		return nil, errors.New("disk: vlir file has no vlir block")
	}
	data, err := s.Block(entry.StartBlock)
	if err != nil {
		return nil, errors.Wrap(err, "walk vlir")
	}

	records := make([]VLIRRecord, 0, vlirRecordCount)
	for i := 0; i < vlirRecordCount; i++ {
		off := 2 + i*2
		t, sec := data[off], data[off+1]
		if t == 0 && sec == 0 {
			if err := checkVLIRTrailingZero(data, i+1); err != nil {
				return nil, err
			}
			break
		}
		rec := VLIRRecord{Index: i}
		if t == 0 && sec == 0xFF {
			rec.Absent = true
			records = append(records, rec)
			continue
		}
		addr, err := NewAddressFromTS(s.Geom, t, sec)
		if err != nil {
			return nil, errors.Wrapf(err, "vlir record %d", i)
		}
		rec.Start = addr
		records = append(records, rec)
	}
	return records, nil
}

// checkVLIRTrailingZero verifies every record slot from start onward is
// still the (0,0) terminator pattern, per spec §4.8's "extra non-zero data
// after the first (0,0) is an error".
func checkVLIRTrailingZero(data []byte, start int) error {
	for i := start; i < vlirRecordCount; i++ {
		off := 2 + i*2
		if data[off] != 0 || data[off+1] != 0 {
			return errors.Wrapf(ErrVLIRCorrupt, "non-zero record %d after (0,0) terminator", i)
		}
	}
	return nil
}
