package disk

import "testing"

func rawDirSlot() []byte {
	raw := make([]byte, 32)
	for i := 0x05; i < 0x15; i++ {
		raw[i] = padByte
	}
	return raw
}

func TestParseDirEntryRegularFile(t *testing.T) {
	s := newTestD64(t).Active()
	raw := rawDirSlot()
	raw[0x02] = byte(EntryPRG) | typeClosed
	raw[0x03] = 17 // start track
	raw[0x04] = 0  // start sector
	copy(raw[0x05:0x15], "MYPROGRAM")
	raw[0x1E] = 5 // block count low
	raw[0x1F] = 0
	raw[0x19] = 23 // year
	raw[0x1A] = 6  // month

	e, err := parseDirEntry(s, raw)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != EntryPRG {
		t.Errorf("type = %v, want PRG", e.Type)
	}
	if !e.Closed || e.Locked {
		t.Errorf("closed/locked = %v/%v, want true/false", e.Closed, e.Locked)
	}
	if e.Name != "MYPROGRAM" {
		t.Errorf("name = %q, want MYPROGRAM", e.Name)
	}
	if e.BlockCount != 5 {
		t.Errorf("block count = %d, want 5", e.BlockCount)
	}
	if !e.StartBlock.IsValid() || e.StartBlock.T != 17 || e.StartBlock.S != 0 {
		t.Errorf("start block = %+v, want (17,0)", e.StartBlock)
	}
	if e.IsGEOS {
		t.Error("plain PRG entry should not be marked GEOS")
	}
	if !e.HasDateTime || e.Year != 23 || e.Month != 6 {
		t.Errorf("date = %+v, want year 23 month 6", e)
	}
}

func TestParseDirEntryGEOSFields(t *testing.T) {
	s := newTestD64(t).Active()
	raw := rawDirSlot()
	raw[0x02] = byte(EntryPRG) | typeClosed
	raw[0x03], raw[0x04] = 17, 0
	copy(raw[0x05:0x15], "GEOSFILE")
	raw[0x15], raw[0x16] = 17, 2 // geos info block
	raw[0x17] = 7                // geos file type
	raw[0x18] = 1                // vlir flag

	e, err := parseDirEntry(s, raw)
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsGEOS {
		t.Fatal("expected IsGEOS")
	}
	if !e.GEOSVLIR {
		t.Error("expected GEOSVLIR true from byte 0x18")
	}
	if e.GEOSFileType != 7 {
		t.Errorf("geos file type = %d, want 7", e.GEOSFileType)
	}
	if !e.GEOSInfoBlock.IsValid() || e.GEOSInfoBlock.T != 17 || e.GEOSInfoBlock.S != 2 {
		t.Errorf("geos info block = %+v, want (17,2)", e.GEOSInfoBlock)
	}
	// REL-only fields must stay zero for a non-REL entry.
	if e.SideSectorBlock.IsValid() || e.RecordLength != 0 {
		t.Errorf("non-REL entry should not populate REL fields: %+v", e)
	}
}

func TestParseDirEntryRELFieldsDoNotLeakIntoGEOS(t *testing.T) {
	s := newTestD64(t).Active()
	raw := rawDirSlot()
	raw[0x02] = byte(EntryREL) | typeClosed
	raw[0x03], raw[0x04] = 17, 0
	copy(raw[0x05:0x15], "RELFILE")
	raw[0x15], raw[0x16] = 17, 3 // side sector ts
	raw[0x17] = 254              // record length

	e, err := parseDirEntry(s, raw)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != EntryREL {
		t.Fatalf("type = %v, want REL", e.Type)
	}
	if !e.SideSectorBlock.IsValid() || e.SideSectorBlock.T != 17 || e.SideSectorBlock.S != 3 {
		t.Errorf("side sector block = %+v, want (17,3)", e.SideSectorBlock)
	}
	if e.RecordLength != 254 {
		t.Errorf("record length = %d, want 254", e.RecordLength)
	}
	if e.IsGEOS {
		t.Error("REL entry must not be marked GEOS even though it shares bytes 0x15-0x17 with the GEOS fields")
	}
}

func TestParsePartitionRow(t *testing.T) {
	s := newTestD64(t).Active()
	raw := rawDirSlot()
	raw[0x02] = 1 // PartitionD64
	copy(raw[0x05:0x15], "GUEST")
	startRaw := 201 // (lba*2+1) for lba=100
	raw[0x03] = byte(startRaw)
	raw[0x04] = byte(startRaw >> 8)
	countRaw := 1366 * 2
	raw[0x1E] = byte(countRaw)
	raw[0x1F] = byte(countRaw >> 8)

	e, err := parsePartitionRow(s, raw)
	if err != nil {
		t.Fatal(err)
	}
	if e.PartitionKind != PartitionD64 {
		t.Errorf("kind = %v, want PartitionD64", e.PartitionKind)
	}
	if e.PartitionStartLBA != 100 {
		t.Errorf("start lba = %d, want 100", e.PartitionStartLBA)
	}
	if e.PartitionBlockCount != 1366 {
		t.Errorf("block count = %d, want 1366", e.PartitionBlockCount)
	}
	if e.Name != "GUEST" {
		t.Errorf("name = %q, want GUEST", e.Name)
	}
}

func TestDirIteratorSkipsEmptySlotsAndStopsAtTerminator(t *testing.T) {
	img := newTestD64(t)
	s := img.Active()

	dirOff := d64BlockOffset(18, 1)
	img.Raw[dirOff+0] = 0   // terminator: single-block directory
	img.Raw[dirOff+1] = 255 // full block used

	slot1 := dirOff + 32 // second slot, first stays all-zero (empty)
	img.Raw[slot1+0x02] = byte(EntryPRG) | typeClosed
	img.Raw[slot1+0x03], img.Raw[slot1+0x04] = 17, 0
	copy(img.Raw[slot1+0x05:slot1+0x15], PadString("ONLYFILE", 16))

	it, err := s.OpenDir()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	entry, err := it.Next()
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil {
		t.Fatal("expected one directory entry")
	}
	if entry.Name != "ONLYFILE" {
		t.Errorf("name = %q, want ONLYFILE", entry.Name)
	}

	next, err := it.Next()
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Errorf("expected enumeration to stop, got another entry: %+v", next)
	}
}
