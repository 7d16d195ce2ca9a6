package disk

import (
	"github.com/boljen/go-bitmap"
	"github.com/pkg/errors"
)

// LoopDetector is a bitset over LBAs, sized max_LBA+1, following spec §4.4.
// Single-use from a given traversal root. Backed by github.com/boljen/go-bitmap,
// the same bitset library other_examples/dargueta-disko's unixv1 driver uses
// for its own block-availability tracking.
type LoopDetector struct {
	bm     bitmap.Bitmap
	maxLBA int
}

// NewLoopDetector allocates a detector sized for the given geometry.
func NewLoopDetector(g *Geometry) *LoopDetector {
	return &LoopDetector{
		bm:     bitmap.New(g.MaxLBA + 1),
		maxLBA: g.MaxLBA,
	}
}

// Mark sets the bit for addr.LBA. Returns (true, nil) if the bit was
// already set (a loop was just detected), (false, nil) on first visit, and
// a non-nil error if the address is out of range (spec §4.4: "-1 if the
// address is out of range").
func (ld *LoopDetector) Mark(addr BlockAddress) (alreadyVisited bool, err error) {
	if !addr.IsValid() || addr.LBA > ld.maxLBA {
		return false, errors.Wrapf(ErrBadLBA, "loop detector mark: lba %d", addr.LBA)
	}
	already := ld.bm.Get(addr.LBA)
	ld.bm.Set(addr.LBA, true)
	return already, nil
}

// Visited reports whether addr.LBA has been marked, without mutating state.
func (ld *LoopDetector) Visited(addr BlockAddress) bool {
	if !addr.IsValid() || addr.LBA > ld.maxLBA {
		return false
	}
	return ld.bm.Get(addr.LBA)
}
