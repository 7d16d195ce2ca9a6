package disk

import "testing"

func TestChainSingleBlockIsDoneImmediately(t *testing.T) {
	img := newTestD64(t)
	s := img.Active()

	off := d64BlockOffset(1, 0)
	img.Raw[off+0] = 0   // next track 0
	img.Raw[off+1] = 100 // 100 bytes used: normal terminator

	addr, err := NewAddressFromTS(s.Geom, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	ch, err := NewChain(s, addr)
	if err != nil {
		t.Fatal(err)
	}
	if !ch.IsDone() {
		t.Fatal("single-block chain should be done immediately after construction, without calling Advance")
	}
	if ch.IsLoop() {
		t.Error("should not be a loop")
	}
	if ch.IsDegenerate() {
		t.Error("should not be degenerate")
	}
	if ch.LastResult() != 100 {
		t.Errorf("LastResult = %d, want 100", ch.LastResult())
	}
}

func TestChainDegenerateTerminatorIsFlagged(t *testing.T) {
	img := newTestD64(t)
	s := img.Active()

	off := d64BlockOffset(1, 0)
	img.Raw[off+0] = 0
	img.Raw[off+1] = 0

	addr, _ := NewAddressFromTS(s.Geom, 1, 0)
	ch, err := NewChain(s, addr)
	if err != nil {
		t.Fatal(err)
	}
	if !ch.IsDone() || !ch.IsDegenerate() {
		t.Fatal("expected a degenerate, done chain")
	}
	if ch.LastResult() != -1 {
		t.Errorf("LastResult = %d, want -1", ch.LastResult())
	}
}

func TestChainAdvancesThroughMultipleBlocksWithoutReprocessing(t *testing.T) {
	img := newTestD64(t)
	s := img.Active()

	firstOff := d64BlockOffset(1, 0)
	img.Raw[firstOff+0] = 1 // -> track 1 sector 1
	img.Raw[firstOff+1] = 1

	secondOff := d64BlockOffset(1, 1)
	img.Raw[secondOff+0] = 0
	img.Raw[secondOff+1] = 50

	addr, _ := NewAddressFromTS(s.Geom, 1, 0)
	ch, err := NewChain(s, addr)
	if err != nil {
		t.Fatal(err)
	}
	if ch.IsDone() {
		t.Fatal("first block has a real successor, should not be done yet")
	}

	visited := []BlockAddress{ch.Current()}
	for !ch.IsDone() {
		if err := ch.Advance(); err != nil {
			t.Fatal(err)
		}
		visited = append(visited, ch.Current())
	}
	if len(visited) != 2 {
		t.Fatalf("visited %d blocks, want exactly 2 (no block revisited)", len(visited))
	}
	if visited[0].T != 1 || visited[0].S != 0 || visited[1].T != 1 || visited[1].S != 1 {
		t.Errorf("visited = %+v, want [(1,0) (1,1)]", visited)
	}
	if ch.LastResult() != 50 {
		t.Errorf("LastResult = %d, want 50", ch.LastResult())
	}
}

func TestChainDetectsLoop(t *testing.T) {
	img := newTestD64(t)
	s := img.Active()

	aOff := d64BlockOffset(1, 0)
	img.Raw[aOff+0] = 1
	img.Raw[aOff+1] = 1

	bOff := d64BlockOffset(1, 1)
	img.Raw[bOff+0] = 1
	img.Raw[bOff+1] = 0 // points back to (1,0)

	addr, _ := NewAddressFromTS(s.Geom, 1, 0)
	ch, err := NewChain(s, addr)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10 && !ch.IsDone(); i++ {
		if err := ch.Advance(); err != nil {
			break
		}
	}
	if !ch.IsDone() || !ch.IsLoop() {
		t.Fatal("expected the chain to terminate with a detected loop")
	}
}

func TestChainAdvanceAfterDoneErrors(t *testing.T) {
	img := newTestD64(t)
	s := img.Active()

	off := d64BlockOffset(1, 0)
	img.Raw[off+0] = 0
	img.Raw[off+1] = 10

	addr, _ := NewAddressFromTS(s.Geom, 1, 0)
	ch, err := NewChain(s, addr)
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.Advance(); err == nil {
		t.Error("expected an error advancing a chain that is already done")
	}
}
