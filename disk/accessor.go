package disk

import "github.com/pkg/errors"

// BlockAccessor is an owned handle pairing a block address with a mutable
// byte slice into the raw image buffer, honouring the active Settings
// frame's partition offset. Generalizes juster-c64's Img.Block(ts)
// unsafe.Pointer into a bounds-checked []byte slice, since cbmimage's
// Settings stack means more than one live format/partition can share a
// single Image.
type BlockAccessor struct {
	s    *Settings
	Addr BlockAddress
	Data []byte
}

// NewAccessor creates an accessor positioned at addr (spec §4.3 create).
func NewAccessor(s *Settings, addr BlockAddress) (*BlockAccessor, error) {
	b := &BlockAccessor{s: s}
	if err := b.SetTo(addr); err != nil {
		return nil, err
	}
	return b, nil
}

// SetTo rebinds the accessor to addr.
func (b *BlockAccessor) SetTo(addr BlockAddress) error {
	data, err := b.s.Block(addr)
	if err != nil {
		return errors.Wrap(err, "set_to")
	}
	b.Addr = addr
	b.Data = data
	return nil
}

// SetToTS rebinds the accessor to a (track,sector) address.
func (b *BlockAccessor) SetToTS(track, sector uint8) error {
	addr, err := NewAddressFromTS(b.s.Geom, track, sector)
	if err != nil {
		return errors.Wrap(err, "set_to_ts")
	}
	return b.SetTo(addr)
}

// SetToLBA rebinds the accessor to an LBA.
func (b *BlockAccessor) SetToLBA(lba int) error {
	addr, err := NewAddressFromLBA(b.s.Geom, lba)
	if err != nil {
		return errors.Wrap(err, "set_to_lba")
	}
	return b.SetTo(addr)
}

// Advance moves to the next physical block image-wide (spec §4.2/§4.3).
func (b *BlockAccessor) Advance() error {
	next, err := b.s.Advance(b.Addr)
	if err != nil {
		return errors.Wrap(err, "advance")
	}
	return b.SetTo(next)
}

// LinkBytes returns the raw (next-track,next-sector) header bytes of the
// current block.
func (b *BlockAccessor) LinkBytes() (nextTrack, nextSector uint8) {
	return b.Data[0], b.Data[1]
}
