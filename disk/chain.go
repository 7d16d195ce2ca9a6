package disk

import "github.com/pkg/errors"

// Chain is block-chain traversal state: {start, current block accessor,
// loop detector, flags (done, loop)} per spec §4.5/§3.
type Chain struct {
	s     *Settings
	start BlockAddress
	acc   *BlockAccessor
	ld    *LoopDetector

	done       bool
	loop       bool
	lastResult int // -1 error (degenerate terminator); 0 not yet terminal; 1..255 bytes used in the last block
}

// NewChain allocates a loop detector, positions a block accessor at root,
// and marks root visited (spec §4.5 start).
func NewChain(s *Settings, root BlockAddress) (*Chain, error) {
	return newChainWithDetector(s, root, NewLoopDetector(s.Geom))
}

// newChainWithDetector lets the Validator supply its own per-chain detector
// instance while still following the same construction contract.
func newChainWithDetector(s *Settings, root BlockAddress, ld *LoopDetector) (*Chain, error) {
	acc, err := NewAccessor(s, root)
	if err != nil {
		return nil, errors.Wrap(err, "chain start")
	}
	if _, err := ld.Mark(root); err != nil {
		return nil, errors.Wrap(err, "chain start mark")
	}
	c := &Chain{s: s, start: root, acc: acc, ld: ld}
	c.refresh()
	return c, nil
}

// refresh reads the current block's own link header to determine whether
// it is the chain's terminal block, without moving the accessor. Called
// right after the accessor is positioned (construction, and every
// successful Advance), so IsDone/LastResult are always correct for the
// block Current() names — callers never need to call Advance just to find
// out a block they already reached is the last one.
func (c *Chain) refresh() {
	nt, ns := c.acc.LinkBytes()
	if nt != 0 {
		c.done = false
		c.lastResult = 0
		return
	}
	c.done = true
	if ns == 0 {
		c.lastResult = -1
		return
	}
	c.lastResult = int(ns)
}

// Advance follows the current block's link header to its successor. It is
// an error to call this once the chain is already done (spec §4.5,
// invariant 5) — callers should check IsDone() first.
func (c *Chain) Advance() error {
	if c.done {
		return errors.New("disk: chain already done")
	}
	nt, ns := c.acc.LinkBytes()

	next, err := NewAddressFromTS(c.s.Geom, nt, ns)
	if err != nil {
		c.done = true
		c.lastResult = -1
		return errors.Wrap(err, "chain advance")
	}

	already, err := c.ld.Mark(next)
	if err != nil {
		c.done = true
		c.lastResult = -1
		return errors.Wrap(err, "chain advance")
	}
	if already {
		c.done = true
		c.loop = true
		c.lastResult = -1
		return errors.Wrap(ErrLoopDetected, "chain advance")
	}

	if err := c.acc.SetTo(next); err != nil {
		c.done = true
		c.lastResult = -1
		return errors.Wrap(err, "chain advance")
	}
	c.refresh()
	return nil
}

// Current returns the address of the block the chain is currently on.
func (c *Chain) Current() BlockAddress { return c.acc.Addr }

// Data returns the bytes of the current block.
func (c *Chain) Data() []byte { return c.acc.Data }

// IsDone reports whether Current() names the chain's terminal block —
// normal end-of-chain or a detected loop (spec §4.5 invariant 5).
func (c *Chain) IsDone() bool { return c.done }

// IsLoop reports whether termination was due to a detected loop.
func (c *Chain) IsLoop() bool { return c.loop }

// IsDegenerate reports whether the terminal block's link header is the
// degenerate (0,0) terminator, which spec §4.5 treats as an error rather
// than a normal end-of-chain.
func (c *Chain) IsDegenerate() bool { return c.done && !c.loop && c.lastResult < 0 }

// LastResult yields, for the current (terminal) block: 1..255 bytes used,
// or -1 if the terminator is degenerate/unresolved (spec §4.5 last_result).
// Meaningless until IsDone() is true.
func (c *Chain) LastResult() int { return c.lastResult }
