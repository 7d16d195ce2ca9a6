package disk

import "github.com/pkg/errors"

// TS is a raw (track,sector) pair: 1-based track, 0-based sector. It carries
// no LBA and is used for format-table literals (BAM selector anchors,
// directory track lists, info-block addresses) before they are resolved
// against a concrete Geometry.
type TS struct {
	T, S uint8
}

// BlockAddress carries both representations in lockstep, per spec §3's
// invariant that blockaddress_lba_exists and blockaddress_ts_exists agree.
// LBA 0 is the unused/invalid sentinel.
type BlockAddress struct {
	TS
	LBA int
}

// NilAddress is the unused sentinel: LBA 0, (track,sector) zero.
var NilAddress = BlockAddress{}

// IsValid reports whether this address names a real block.
func (a BlockAddress) IsValid() bool { return a.LBA != 0 }

// NewAddressFromTS builds a BlockAddress from (track,sector), generalizing
// juster-c64's TS.Offset() by splitting the LBA out as an explicit
// intermediate value (spec §4.2 init_from_ts).
func NewAddressFromTS(g *Geometry, track, sector uint8) (BlockAddress, error) {
	lba, err := g.TSToLBA(track, sector)
	if err != nil {
		return NilAddress, errors.Wrap(err, "init_from_ts")
	}
	return BlockAddress{TS: TS{T: track, S: sector}, LBA: lba}, nil
}

// NewAddressFromLBA builds a BlockAddress from an LBA (spec §4.2 init_from_lba).
func NewAddressFromLBA(g *Geometry, lba int) (BlockAddress, error) {
	if lba == 0 {
		return NilAddress, nil
	}
	t, s, err := g.LBAToTS(lba)
	if err != nil {
		return NilAddress, errors.Wrap(err, "init_from_lba")
	}
	return BlockAddress{TS: TS{T: t, S: s}, LBA: lba}, nil
}

// AdvanceRaw moves to the next block image-wide, wrapping to the next track
// when the current track ends (spec §4.2 advance). It knows nothing about
// partition bounds; Settings.Advance layers the relative-addressing-mode
// boundary check on top.
func AdvanceRaw(g *Geometry, a BlockAddress) (BlockAddress, error) {
	if !a.IsValid() {
		return NilAddress, errors.Wrap(ErrInvalidAddr, "advance")
	}
	if a.LBA >= g.MaxLBA {
		return NilAddress, errors.Wrap(ErrEndOfImage, "advance")
	}
	return NewAddressFromLBA(g, a.LBA+1)
}

// AdvanceInTrackRaw moves to the next sector of the same track (spec §4.2
// advance_in_track); fails at the last sector of the track.
func AdvanceInTrackRaw(g *Geometry, a BlockAddress) (BlockAddress, error) {
	if !a.IsValid() {
		return NilAddress, errors.Wrap(ErrInvalidAddr, "advance_in_track")
	}
	n, err := g.SectorsInTrack(a.T)
	if err != nil {
		return NilAddress, err
	}
	if a.S+1 >= n {
		return NilAddress, errors.Wrap(ErrEndOfTrack, "advance_in_track")
	}
	return NewAddressFromTS(g, a.T, a.S+1)
}

// AddRaw implements spec §4.2's "add" operation: result ← result + adder − 1
// in LBA terms, with identity when either operand is the unused sentinel.
func AddRaw(g *Geometry, result, adder BlockAddress) (BlockAddress, error) {
	if !result.IsValid() {
		return adder, nil
	}
	if !adder.IsValid() {
		return result, nil
	}
	return NewAddressFromLBA(g, result.LBA+adder.LBA-1)
}
