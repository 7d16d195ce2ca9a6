package disk

import "testing"

// buildMinimalD64 wires up a blank D64 image with: a BAM marking track 1
// sector 1 used (the file's single data block) and everything else free, a
// one-block directory naming a single PRG file starting at (1,1).
func buildMinimalD64(t *testing.T) *Image {
	t.Helper()
	img := newTestD64(t)
	s := img.Active()

	// directory block (18,1): terminator, one live PRG entry.
	dirOff := d64BlockOffset(18, 1)
	img.Raw[dirOff+0] = 0
	img.Raw[dirOff+1] = 255
	img.Raw[dirOff+0x02] = byte(EntryPRG) | typeClosed
	img.Raw[dirOff+0x03], img.Raw[dirOff+0x04] = 1, 1
	copy(img.Raw[dirOff+0x05:dirOff+0x15], "ONEBLOCK")
	img.Raw[dirOff+0x1E] = 1 // block count

	// file data block (1,1): terminator, 100 bytes used.
	dataOff := d64BlockOffset(1, 1)
	img.Raw[dataOff+0] = 0
	img.Raw[dataOff+1] = 100

	// BAM: every sector free (bit set) except the ones actually claimed by
	// structures in this minimal image: track 1 sector 1 (the file's data
	// block) and track 18 sectors 0/1 (info+BAM block, directory block).
	for track := uint8(1); track <= s.Geom.MaxTrack; track++ {
		n, err := s.Geom.SectorsInTrack(track)
		if err != nil {
			t.Fatal(err)
		}
		bamEntryOff := d64BlockOffset(18, 0) + 4 + int(track-1)*4
		var bits [3]byte
		for sec := uint8(0); sec < n; sec++ {
			switch {
			case track == 1 && sec == 1:
				continue // used by the file
			case track == 18 && (sec == 0 || sec == 1):
				continue // used by info/bam and directory blocks
			}
			bits[sec/8] |= 1 << (sec % 8)
		}
		free := 0
		for _, b := range bits {
			for bit := 0; bit < 8; bit++ {
				if b&(1<<bit) != 0 {
					free++
				}
			}
		}
		img.Raw[bamEntryOff] = byte(free)
		img.Raw[bamEntryOff+1] = bits[0]
		img.Raw[bamEntryOff+2] = bits[1]
		img.Raw[bamEntryOff+3] = bits[2]
	}

	return img
}

func TestValidateCleanImageHasNoProblems(t *testing.T) {
	img := buildMinimalD64(t)
	problems, err := img.Active().Validate()
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestValidateDoesNotDoubleClaimCoincidingInfoAndBAMBlock(t *testing.T) {
	img := buildMinimalD64(t)
	s := img.Active()

	// D64's info block and its BAM selector are the same block, (18,0).
	if s.InfoBlock != s.BAMSelectors[0].block {
		t.Fatalf("test assumption broken: info block %+v != bam selector block %+v", s.InfoBlock, s.BAMSelectors[0].block)
	}

	problems, err := s.Validate()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range problems {
		if p.Kind == "shared-block" {
			t.Errorf("expected no shared-block problem for the coinciding info/bam block, got %v", p)
		}
	}
}

func TestValidateFlagsOrphanUsedBlock(t *testing.T) {
	img := buildMinimalD64(t)
	s := img.Active()

	// Mark track 2 sector 0 used in the BAM (clear its free bit) without
	// any directory entry claiming it.
	bamEntryOff := d64BlockOffset(18, 0) + 4 + 1*4
	img.Raw[bamEntryOff+1] &^= 0x01
	img.Raw[bamEntryOff] -= 1

	problems, err := s.Validate()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, p := range problems {
		if p.Kind == "orphan-used" && p.TS.T == 2 && p.TS.S == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an orphan-used problem at (2,0), got %v", problems)
	}
}

func TestValidateFlagsClaimedButFreeBlock(t *testing.T) {
	img := buildMinimalD64(t)
	s := img.Active()

	// Mark the file's own data block (1,1) free in the BAM even though the
	// directory still claims it via the file's chain.
	bamEntryOff := d64BlockOffset(18, 0) + 4
	img.Raw[bamEntryOff+1] |= 0x02 // set bit 1 (sector 1) free
	img.Raw[bamEntryOff] += 1

	problems, err := s.Validate()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, p := range problems {
		if p.Kind == "claimed-free" && p.TS.T == 1 && p.TS.S == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a claimed-free problem at (1,1), got %v", problems)
	}
}

func TestFATCachesAndExportsOwnership(t *testing.T) {
	img := buildMinimalD64(t)
	s := img.Active()

	fat, problems, err := s.FAT()
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	addr, err := NewAddressFromTS(s.Geom, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fat[addr.LBA].Kind != FATData {
		t.Errorf("file data block kind = %v, want FATData", fat[addr.LBA].Kind)
	}
	if fat[addr.LBA].Owner == "" {
		t.Error("expected a non-empty owner for the claimed data block")
	}
}
