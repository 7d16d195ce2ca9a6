package disk

import (
	"math/bits"

	"github.com/pkg/errors"
)

// bamSelector locates, within a given block, the bitmap or counter byte(s)
// for a given track (spec §3 "BAM Selector", §4.6).
type bamSelector struct {
	startTrack uint8
	endTrack   uint8 // 0 = unbounded (extends to the format's last track)
	block      TS
	offset     int
	stride     int
	dataCount  int // bytes per track; 0 for a counter selector, 1..32 for a bitmap selector (DNP needs 32 bytes/track)
	reverse    bool
}

// FreeState is the per-block free/used classification of spec §4.6.
type FreeState int

const (
	StateUsed FreeState = iota
	StateFree
	StateReallyFree
	StateUnknown
	StateDoesNotExist
)

func (fs FreeState) String() string {
	switch fs {
	case StateUsed:
		return "USED"
	case StateFree:
		return "FREE"
	case StateReallyFree:
		return "REALLY_FREE"
	case StateDoesNotExist:
		return "DOES_NOT_EXIST"
	default:
		return "UNKNOWN"
	}
}

// selectorFor returns the selector with the largest starttrack <= t.
func selectorFor(selectors []bamSelector, t uint8) (*bamSelector, error) {
	var best *bamSelector
	for i := range selectors {
		sel := &selectors[i]
		if sel.startTrack > t {
			continue
		}
		if sel.endTrack != 0 && t > sel.endTrack {
			continue
		}
		if best == nil || sel.startTrack > best.startTrack {
			best = sel
		}
	}
	if best == nil {
		return nil, errors.Wrapf(ErrNoSelector, "track %d", t)
	}
	return best, nil
}

// reverseByte reverses the bit order of b (CMD/DNP's reverse-bit-order variant).
func reverseByte(b byte) byte {
	return bits.Reverse8(b)
}

// bamBitGet reports whether bit n (bit s of sector s, LSB-first within each
// byte, bytes in ascending order) is set in a decoded per-track bitmap.
func bamBitGet(bm []byte, n int) bool {
	byteIdx := n / 8
	if byteIdx < 0 || byteIdx >= len(bm) {
		return false
	}
	return bm[byteIdx]&(1<<uint(n%8)) != 0
}

// bamPopcount counts set bits across a decoded per-track bitmap.
func bamPopcount(bm []byte) int {
	total := 0
	for _, b := range bm {
		total += bits.OnesCount8(b)
	}
	return total
}

// bamBitmapForTrack decodes the free-bit bitmap for track t: one bit per
// sector, bit s giving the state of sector s. Returned as a byte slice
// rather than a fixed-width integer since some formats (DNP) pack up to 32
// bytes of bitmap per track, beyond what a uint64 could hold.
func (s *Settings) bamBitmapForTrack(t uint8) (bm []byte, err error) {
	sel, err := selectorFor(s.BAMSelectors, t)
	if err != nil {
		return nil, err
	}
	addr, err := s.blockLBA(sel.block)
	if err != nil {
		return nil, errors.Wrap(err, "bam selector block")
	}
	data, err := s.Block(addr)
	if err != nil {
		return nil, errors.Wrap(err, "bam selector block")
	}
	base := sel.offset + int(t-sel.startTrack)*sel.stride
	if base < 0 || base+sel.dataCount > len(data) {
		return nil, errors.Wrapf(ErrBadLBA, "bam selector offset %d+%d exceeds block", base, sel.dataCount)
	}
	out := make([]byte, sel.dataCount)
	for i := 0; i < sel.dataCount; i++ {
		b := data[base+i]
		if sel.reverse {
			b = reverseByte(b)
		}
		out[i] = b
	}
	return out, nil
}

// bamCounterForTrack returns the free-block count for track t: read from a
// counter selector if present, otherwise derived by popcounting the bitmap.
func (s *Settings) bamCounterForTrack(t uint8) (uint8, error) {
	if len(s.BAMCounterSelectors) > 0 {
		sel, err := selectorFor(s.BAMCounterSelectors, t)
		if err != nil {
			if errors.Is(err, ErrNoSelector) {
				bm, err := s.bamBitmapForTrack(t)
				if err != nil {
					return 0, err
				}
				return uint8(bamPopcount(bm)), nil
			}
			return 0, err
		}
		addr, err := s.blockLBA(sel.block)
		if err != nil {
			return 0, errors.Wrap(err, "bam counter block")
		}
		data, err := s.Block(addr)
		if err != nil {
			return 0, errors.Wrap(err, "bam counter block")
		}
		off := sel.offset + int(t-sel.startTrack)*sel.stride
		if off < 0 || off >= len(data) {
			return 0, errors.Wrapf(ErrBadLBA, "bam counter offset %d exceeds block", off)
		}
		return data[off], nil
	}
	bm, err := s.bamBitmapForTrack(t)
	if err != nil {
		return 0, err
	}
	return uint8(bamPopcount(bm)), nil
}

// isFreshlyFormatted matches spec §4.6's pattern: all 256 bytes zero, or
// bytes[1..255] == 1 (bytes[0] arbitrary).
func isFreshlyFormatted(data []byte) bool {
	allZero := true
	for _, b := range data {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return true
	}
	for i := 1; i < len(data); i++ {
		if data[i] != 1 {
			return false
		}
	}
	return true
}

// BlockState returns the free-state of (track,sector) per spec §4.6.
func (s *Settings) BlockState(track, sector uint8) (FreeState, error) {
	n, err := s.Geom.SectorsInTrack(track)
	if err != nil {
		return StateDoesNotExist, nil
	}
	if sector >= n {
		return StateDoesNotExist, nil
	}
	bm, err := s.bamBitmapForTrack(track)
	if err != nil {
		return StateUnknown, err
	}
	if !bamBitGet(bm, int(sector)) {
		return StateUsed, nil
	}
	addr, err := NewAddressFromTS(s.Geom, track, sector)
	if err != nil {
		return StateUnknown, err
	}
	data, err := s.Block(addr)
	if err != nil {
		return StateUnknown, err
	}
	if isFreshlyFormatted(data) {
		return StateReallyFree, nil
	}
	return StateFree, nil
}

// BAMConsistencyError describes one BAM consistency violation (spec §4.6
// consistency check / §7 BAM errors).
type BAMConsistencyError struct {
	Track uint8
	Err   error
}

func (e BAMConsistencyError) Error() string {
	return errors.Wrapf(e.Err, "track %d", e.Track).Error()
}

// CheckBAMConsistency walks every track and reports: bits set outside the
// legal sector range; counter != bitmap popcount when a counter is stored;
// counter exceeding sectors_in_track.
func (s *Settings) CheckBAMConsistency() []BAMConsistencyError {
	var problems []BAMConsistencyError
	for t := uint8(1); t <= s.Geom.MaxTrack; t++ {
		n, err := s.Geom.SectorsInTrack(t)
		if err != nil {
			continue
		}
		bm, err := s.bamBitmapForTrack(t)
		if err != nil {
			problems = append(problems, BAMConsistencyError{t, err})
			continue
		}
		totalBits := len(bm) * 8
		for bit := int(n); bit < totalBits; bit++ {
			if bamBitGet(bm, bit) {
				problems = append(problems, BAMConsistencyError{t, errors.Wrapf(ErrBAMBitOutOfRange, "bit %d set beyond %d sectors", bit, n)})
				break
			}
		}
		counter, err := s.bamCounterForTrack(t)
		if err != nil {
			problems = append(problems, BAMConsistencyError{t, err})
			continue
		}
		if counter > n {
			problems = append(problems, BAMConsistencyError{t, errors.Wrapf(ErrBAMCounterTooBig, "counter %d > %d sectors", counter, n)})
		}
		if len(s.BAMCounterSelectors) > 0 {
			popcount := uint8(bamPopcount(bm))
			if popcount != counter {
				problems = append(problems, BAMConsistencyError{t, errors.Wrapf(ErrBAMCounterWrong, "counter %d != popcount %d", counter, popcount)})
			}
		}
	}
	return problems
}

// FreeBlockTotal sums per-track free-block counters over all non-directory
// tracks (spec §4.6).
func (s *Settings) FreeBlockTotal() (int, error) {
	isDirTrack := func(t uint8) bool {
		for _, dt := range s.DirTracks {
			if dt == t {
				return true
			}
		}
		return false
	}
	var total int
	for t := uint8(1); t <= s.Geom.MaxTrack; t++ {
		if isDirTrack(t) {
			continue
		}
		c, err := s.bamCounterForTrack(t)
		if err != nil {
			return 0, err
		}
		total += int(c)
	}
	return total, nil
}
