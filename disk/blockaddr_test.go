package disk

import "testing"

func TestNewAddressFromTSAndLBAAgree(t *testing.T) {
	g := newD64Geometry()
	fromTS, err := NewAddressFromTS(g, 18, 0)
	if err != nil {
		t.Fatal(err)
	}
	fromLBA, err := NewAddressFromLBA(g, fromTS.LBA)
	if err != nil {
		t.Fatal(err)
	}
	if fromTS != fromLBA {
		t.Fatalf("addresses disagree: %+v vs %+v", fromTS, fromLBA)
	}
}

func TestNilAddressIsInvalid(t *testing.T) {
	if NilAddress.IsValid() {
		t.Error("NilAddress should be invalid")
	}
	addr, err := NewAddressFromLBA(newD64Geometry(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if addr.IsValid() {
		t.Error("lba 0 should resolve to the invalid sentinel")
	}
}

func TestAdvanceRawWrapsTracks(t *testing.T) {
	g := newD64Geometry()
	last, err := NewAddressFromTS(g, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	next, err := AdvanceRaw(g, last)
	if err != nil {
		t.Fatal(err)
	}
	if next.T != 2 || next.S != 0 {
		t.Errorf("advance past end of track 1 = %d/%d, want 2/0", next.T, next.S)
	}
}

func TestAdvanceRawEndOfImage(t *testing.T) {
	g := newD64Geometry()
	last, err := NewAddressFromLBA(g, g.MaxLBA)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AdvanceRaw(g, last); err == nil {
		t.Error("expected ErrEndOfImage advancing past the last block")
	}
}

func TestAdvanceInTrackRawFailsAtTrackEnd(t *testing.T) {
	g := newD64Geometry()
	addr, err := NewAddressFromTS(g, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AdvanceInTrackRaw(g, addr); err == nil {
		t.Error("expected ErrEndOfTrack at the last sector of a track")
	}
}

func TestAddRawImplementsOneBasedOffset(t *testing.T) {
	g := newD64Geometry()
	start, err := NewAddressFromTS(g, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	one, err := NewAddressFromLBA(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	plusOne, err := AddRaw(g, start, one)
	if err != nil {
		t.Fatal(err)
	}
	if plusOne != start {
		t.Errorf("adding 1 should be a no-op (1-based adder), got %+v", plusOne)
	}
	two, err := NewAddressFromLBA(g, 2)
	if err != nil {
		t.Fatal(err)
	}
	plusTwo, err := AddRaw(g, start, two)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := NewAddressFromTS(g, 1, 1)
	if plusTwo != want {
		t.Errorf("adding 2 = %+v, want %+v", plusTwo, want)
	}
}
