package disk

import (
	"fmt"

	"github.com/pkg/errors"
)

// FATKind classifies one derived-FAT slot (spec §4.8 "derived FAT").
type FATKind int

const (
	FATUnused FATKind = iota
	FATSystem         // info block, BAM block, directory chain, GEOS border, GEOS info block, side sectors, VLIR record map, partition spans
	FATData           // claimed by a file's data chain or a VLIR record's chain
)

// FATEntry is one slot of the FAT the Validator derives by walking every
// reachable structure, to be cross-checked against the on-disk BAM (spec
// §4.8).
type FATEntry struct {
	Kind  FATKind
	Owner string
}

// ValidationError is one non-fatal consistency problem found by Validate
// (spec §4.8/§7). Validate accumulates these rather than stopping at the
// first one.
type ValidationError struct {
	LBA     int
	TS      TS
	Kind    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("disk: %s at track %d sector %d (lba %d): %s", e.Kind, e.TS.T, e.TS.S, e.LBA, e.Message)
}

// Validator builds a frame's derived FAT and cross-checks it against the
// BAM (spec §4.8).
type Validator struct {
	s    *Settings
	fat  []FATEntry
	errs []ValidationError
}

// NewValidator allocates a Validator for s, sized 0..MaxLBA inclusive so the
// FAT can be indexed directly by LBA.
func NewValidator(s *Settings) *Validator {
	return &Validator{s: s, fat: make([]FATEntry, s.Geom.MaxLBA+1)}
}

func (v *Validator) claim(addr BlockAddress, kind FATKind, owner string) {
	if !addr.IsValid() || addr.LBA >= len(v.fat) {
		v.errs = append(v.errs, ValidationError{LBA: addr.LBA, TS: addr.TS, Kind: "bad-claim", Message: fmt.Sprintf("%s claims an out-of-range block", owner)})
		return
	}
	e := &v.fat[addr.LBA]
	if e.Kind != FATUnused {
		v.errs = append(v.errs, ValidationError{LBA: addr.LBA, TS: addr.TS, Kind: "shared-block", Message: fmt.Sprintf("%s and %s both claim this block", e.Owner, owner)})
		return
	}
	e.Kind = kind
	e.Owner = owner
}

// walkChain claims every block of a generic chain starting at root, checking
// the actual block count against expectedCount when expectedCount >= 0.
func (v *Validator) walkChain(root BlockAddress, owner string, expectedCount int) {
	ch, err := NewChain(v.s, root)
	if err != nil {
		v.errs = append(v.errs, ValidationError{TS: root.TS, LBA: root.LBA, Kind: "chain-start", Message: errors.Wrap(err, owner).Error()})
		return
	}
	count := 0
	for {
		v.claim(ch.Current(), FATData, owner)
		count++
		if ch.IsDone() {
			break
		}
		if err := ch.Advance(); err != nil {
			if ch.IsLoop() {
				v.errs = append(v.errs, ValidationError{TS: ch.Current().TS, LBA: ch.Current().LBA, Kind: "loop", Message: owner + ": chain loops back on itself"})
			} else {
				v.errs = append(v.errs, ValidationError{TS: ch.Current().TS, LBA: ch.Current().LBA, Kind: "chain-error", Message: errors.Wrap(err, owner).Error()})
			}
			return
		}
	}
	if ch.IsDegenerate() {
		v.errs = append(v.errs, ValidationError{TS: ch.Current().TS, LBA: ch.Current().LBA, Kind: "degenerate-terminator", Message: errors.Wrap(ErrDegenerateTerm, owner).Error()})
	}
	if expectedCount >= 0 && count != expectedCount {
		v.errs = append(v.errs, ValidationError{TS: root.TS, LBA: root.LBA, Kind: "block-count-mismatch", Message: fmt.Sprintf("%s: declared %d blocks, chain has %d", owner, expectedCount, count)})
	}
}

// markSystemBlocks claims the info block, every BAM selector's backing
// block, and (if present) the GEOS border block (spec §4.8 "info+BAM block
// marking", "GEOS border marking").
func (v *Validator) markSystemBlocks() {
	s := v.s
	seen := map[TS]bool{}
	if s.HasInfoBlock {
		if addr, err := s.blockLBA(s.InfoBlock); err == nil {
			v.claim(addr, FATSystem, "info block")
		}
		seen[s.InfoBlock] = true
	}
	claimSelectorBlocks := func(sels []bamSelector) {
		for _, sel := range sels {
			if seen[sel.block] {
				continue // coincides with the info block on D64/D71/D40, or an earlier selector
			}
			seen[sel.block] = true
			if addr, err := s.blockLBA(sel.block); err == nil {
				v.claim(addr, FATSystem, "bam selector block")
			}
		}
	}
	claimSelectorBlocks(s.BAMSelectors)
	claimSelectorBlocks(s.BAMCounterSelectors)
	if s.HasGEOSBorder {
		if addr, err := NewAddressFromTS(s.Geom, s.GEOSBorder.T, s.GEOSBorder.S); err == nil {
			v.claim(addr, FATSystem, "geos border")
		}
	}
}

// markDirectory walks the directory chain itself, then every entry's own
// structure, dispatching on entry kind per spec §4.8's per-entry-kind
// marking.
func (v *Validator) markDirectory() error {
	s := v.s
	if s.isPartitionTable {
		return v.markPartitionRows()
	}

	addr, err := s.blockLBA(s.FirstDirBlock)
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	ch, err := NewChain(s, addr)
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	for {
		v.claim(ch.Current(), FATSystem, "directory block")
		if ch.IsDone() {
			break
		}
		if err := ch.Advance(); err != nil {
			if ch.IsLoop() {
				v.errs = append(v.errs, ValidationError{TS: ch.Current().TS, LBA: ch.Current().LBA, Kind: "loop", Message: "directory chain loops back on itself"})
			}
			break
		}
	}

	it, err := s.OpenDir()
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	defer it.Close()
	for {
		entry, err := it.Next()
		if err != nil {
			v.errs = append(v.errs, ValidationError{Kind: "directory-error", Message: err.Error()})
			break
		}
		if entry == nil {
			break
		}
		v.markEntry(entry)
	}
	return nil
}

func (v *Validator) markEntry(entry *DirEntry) {
	owner := entry.Name + "." + entry.Type.String()

	if entry.IsGEOS && entry.GEOSInfoBlock.IsValid() {
		v.claim(entry.GEOSInfoBlock, FATSystem, owner+" geos info")
	}

	switch {
	case entry.Type == EntryREL:
		if entry.StartBlock.IsValid() {
			v.walkChain(entry.StartBlock, owner+" data", -1)
		}
		rel, err := v.s.WalkRelSideSectors(entry)
		if err != nil {
			v.errs = append(v.errs, ValidationError{Kind: "rel-error", Message: errors.Wrap(err, owner).Error()})
			return
		}
		if rel.SuperSideSector.IsValid() {
			v.claim(rel.SuperSideSector, FATSystem, owner+" super side sector")
		}
		for _, ss := range rel.SideSectors {
			v.claim(ss, FATSystem, owner+" side sector")
		}

	case entry.IsGEOS && entry.GEOSVLIR:
		if !entry.StartBlock.IsValid() {
			return
		}
		v.claim(entry.StartBlock, FATSystem, owner+" vlir block")
		records, err := v.s.WalkVLIR(entry)
		if err != nil {
			v.errs = append(v.errs, ValidationError{Kind: "vlir-error", Message: errors.Wrap(err, owner).Error()})
			return
		}
		for _, rec := range records {
			if rec.Absent || !rec.Start.IsValid() {
				continue
			}
			v.walkChain(rec.Start, fmt.Sprintf("%s vlir record %d", owner, rec.Index), -1)
		}

	default:
		if entry.StartBlock.IsValid() {
			expected := -1
			if entry.BlockCount > 0 {
				expected = int(entry.BlockCount)
			}
			v.walkChain(entry.StartBlock, owner, expected)
		}
	}
}

// markPartitionRows claims each partition's absolute LBA span as a single
// system-owned run (spec §9 "CMD FD-style outer PARTITION TABLE"); it does
// not recurse into the partition's own contents — that requires Chdir into
// the partition and a fresh Validate call against its own frame.
func (v *Validator) markPartitionRows() error {
	it, err := v.s.OpenDir()
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	defer it.Close()
	for {
		entry, err := it.Next()
		if err != nil {
			v.errs = append(v.errs, ValidationError{Kind: "partition-table-error", Message: err.Error()})
			break
		}
		if entry == nil {
			break
		}
		for i := 0; i < entry.PartitionBlockCount; i++ {
			addr, err := NewAddressFromLBA(v.s.Geom, entry.PartitionStartLBA+i)
			if err != nil {
				break
			}
			v.claim(addr, FATSystem, entry.Name+" partition")
		}
	}
	return nil
}

// crossCheckBAM reports every block whose derived-FAT claim state disagrees
// with the on-disk BAM (spec §4.8 "BAM cross-check").
func (v *Validator) crossCheckBAM() {
	s := v.s
	for lba := 1; lba <= s.Geom.MaxLBA; lba++ {
		t, sec, err := s.Geom.LBAToTS(lba)
		if err != nil {
			continue
		}
		state, err := s.BlockState(t, sec)
		if err != nil {
			v.errs = append(v.errs, ValidationError{LBA: lba, TS: TS{T: t, S: sec}, Kind: "bam-read-error", Message: err.Error()})
			continue
		}
		claimed := v.fat[lba].Kind != FATUnused
		switch state {
		case StateUsed:
			if !claimed {
				v.errs = append(v.errs, ValidationError{LBA: lba, TS: TS{T: t, S: sec}, Kind: "orphan-used", Message: "BAM marks this block used but no directory entry claims it"})
			}
		case StateFree, StateReallyFree:
			if claimed {
				v.errs = append(v.errs, ValidationError{LBA: lba, TS: TS{T: t, S: sec}, Kind: "claimed-free", Message: fmt.Sprintf("%s claims this block but BAM marks it free", v.fat[lba].Owner)})
			}
		}
	}
}

// Validate runs the full derived-FAT build and BAM cross-check for s,
// caching the derived FAT on the frame and returning every non-fatal
// consistency problem found (spec §4.8).
func (s *Settings) Validate() ([]ValidationError, error) {
	v := NewValidator(s)

	v.markSystemBlocks()
	if err := v.markDirectory(); err != nil {
		return nil, err
	}

	if s.Adapter != nil && s.Adapter.BAMPostFixup != nil {
		if err := s.Adapter.BAMPostFixup(s, v.fat); err != nil {
			return nil, errors.Wrap(err, "validate: bam post-fixup")
		}
	}

	if !s.isPartitionTable {
		v.crossCheckBAM()
		for _, bamErr := range s.CheckBAMConsistency() {
			v.errs = append(v.errs, ValidationError{TS: TS{T: bamErr.Track}, Kind: "bam-consistency", Message: bamErr.Error()})
		}
	}

	s.fat = v.fat
	s.hasFAT = true
	s.fatValid = len(v.errs) == 0
	return v.errs, nil
}

// FAT returns the cached derived FAT, validating first if it has not been
// built yet.
func (s *Settings) FAT() ([]FATEntry, []ValidationError, error) {
	if s.hasFAT {
		return s.fat, nil, nil
	}
	errs, err := s.Validate()
	return s.fat, errs, err
}
