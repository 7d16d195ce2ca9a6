package disk

import "github.com/pkg/errors"

// AddressMode selects how a Settings frame's local LBA numbering maps into
// the raw image buffer (spec §3/§4.9).
type AddressMode int

const (
	// AddressGlobal: LBA 1 is the first block of the partition, with a data
	// offset into the raw buffer (CMD FD-style).
	AddressGlobal AddressMode = iota
	// AddressRelative: partition block X/Y resolves into a sub-range of the
	// enclosing image (1581-style).
	AddressRelative
)

// AdapterFuncs is the per-format capability table of spec §9: geometry
// query, ts<->lba conversion hook, chdir, bam-post-fixup. Geometry/TS<->LBA
// default to the plain Geometry methods; formats only override Chdir and
// BAMPostFixup.
type AdapterFuncs struct {
	Chdir        func(parent *Settings, entry *DirEntry) (*Settings, error)
	BAMPostFixup func(s *Settings, fat []FATEntry) error
}

// Settings is a frame describing the currently active logical volume (spec
// §3). The Settings stack generalizes juster-c64's Img, which folded a
// single implicit frame directly into the image type.
type Settings struct {
	Format Format
	Name   string
	Geom   *Geometry

	Mode       AddressMode
	FirstBlock BlockAddress // relative mode: enclosing-coordinates LBA of this frame's local LBA 1; global mode: the frame's own LBA 1
	LastBlock  BlockAddress // relative mode: enclosing-coordinates LBA of this frame's local last block; global mode: the frame's own last block
	DataOffset int          // global mode: byte offset into the raw buffer

	DirTracks     []uint8
	FirstDirBlock TS

	InfoBlock      TS
	HasInfoBlock   bool
	DiskNameOffset int

	BAMSelectors        []bamSelector
	BAMCounterSelectors []bamSelector

	Adapter *AdapterFuncs

	fat       []FATEntry // cached derived FAT (validator-built)
	fatValid  bool
	hasFAT    bool
	GEOSBorder    TS
	HasGEOSBorder bool

	isPartitionTable   bool // true for a CMD FD outer partition-table frame
	hasSuperSideSector bool // true for 1581/CMD REL files (super-side-sector layer present)

	image  *Image
	parent *Settings
}

// Block resolves addr to a byte slice inside the raw image buffer.
func (s *Settings) Block(addr BlockAddress) ([]byte, error) {
	if !addr.IsValid() {
		return nil, errors.Wrap(ErrInvalidAddr, "block")
	}
	off, err := s.ResolveOffset(addr.LBA)
	if err != nil {
		return nil, errors.Wrap(err, "block")
	}
	end := off + s.Geom.BytesPerBlock
	if off < 0 || end > len(s.image.Raw) {
		return nil, errors.Wrapf(ErrBadLBA, "block resolves outside raw buffer (off=%d end=%d size=%d)", off, end, len(s.image.Raw))
	}
	return s.image.Raw[off:end], nil
}

// ResolveOffset converts a local LBA into a byte offset in the raw buffer.
func (s *Settings) ResolveOffset(localLBA int) (int, error) {
	switch s.Mode {
	case AddressGlobal:
		return s.DataOffset + (localLBA-1)*s.Geom.BytesPerBlock, nil
	case AddressRelative:
		if s.parent == nil {
			return 0, errors.New("disk: relative settings frame has no parent")
		}
		enclosingLBA := s.FirstBlock.LBA + localLBA - 1
		return s.parent.ResolveOffset(enclosingLBA)
	default:
		return 0, errors.New("disk: unknown address mode")
	}
}

// Advance moves to the next block image-wide within this frame's own
// geometry; since a partition's Geometry.MaxLBA is sized to the partition's
// own block count, this naturally fails when crossing out of the active
// sub-area in relative addressing mode (spec §4.2/§4.9).
func (s *Settings) Advance(a BlockAddress) (BlockAddress, error) {
	return AdvanceRaw(s.Geom, a)
}

// blockLBA resolves a TS literal (from a format's static tables) against
// this frame's geometry.
func (s *Settings) blockLBA(ts TS) (BlockAddress, error) {
	return NewAddressFromTS(s.Geom, ts.T, ts.S)
}

// pushChild pushes a new Settings frame onto the Image's stack, becoming
// the active frame (spec §4.9 chdir).
func (img *Image) pushChild(child *Settings) {
	child.image = img
	child.parent = img.Active()
	img.stack = append(img.stack, child)
}

// ChdirClose pops the top frame; it is an error to pop the root (spec §4.9
// chdir_close). Frame popping releases the frame's cached FAT and info
// accessor unless they are shared with the enclosing frame (they never are
// here — each frame builds its own fat lazily, so there is nothing to share).
func (img *Image) ChdirClose() error {
	if len(img.stack) <= 1 {
		return errors.Wrap(ErrRootFrame, "chdir_close")
	}
	top := img.stack[len(img.stack)-1]
	top.fat = nil
	top.fatValid = false
	img.stack = img.stack[:len(img.stack)-1]
	return nil
}

// Chdir asks the active frame's format adapter to build a new Settings
// frame for the given directory entry (a partition or subdirectory) and
// pushes it (spec §4.9).
func (img *Image) Chdir(entry *DirEntry) error {
	active := img.Active()
	if active.Adapter == nil || active.Adapter.Chdir == nil {
		return errors.Wrap(ErrNotAPartDir, "chdir")
	}
	child, err := active.Adapter.Chdir(active, entry)
	if err != nil {
		return errors.Wrap(err, "chdir")
	}
	img.pushChild(child)
	return nil
}
