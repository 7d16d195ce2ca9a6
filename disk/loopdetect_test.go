package disk

import "testing"

func TestLoopDetectorMarksFirstVisitThenFlagsRevisit(t *testing.T) {
	g := newD64Geometry()
	ld := NewLoopDetector(g)

	addr, err := NewAddressFromTS(g, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	already, err := ld.Mark(addr)
	if err != nil {
		t.Fatal(err)
	}
	if already {
		t.Error("first mark should report not-already-visited")
	}
	if !ld.Visited(addr) {
		t.Error("Visited should report true after Mark")
	}

	already, err = ld.Mark(addr)
	if err != nil {
		t.Fatal(err)
	}
	if !already {
		t.Error("second mark of the same address should report already-visited")
	}
}

func TestLoopDetectorOutOfRangeErrors(t *testing.T) {
	g := newD64Geometry()
	ld := NewLoopDetector(g)
	bad := BlockAddress{TS: TS{T: 1, S: 0}, LBA: g.MaxLBA + 100}
	if _, err := ld.Mark(bad); err == nil {
		t.Error("expected an error marking an out-of-range lba")
	}
}
