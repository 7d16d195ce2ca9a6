package disk

import "errors"

// Error taxonomy, per the geometry / addressing / structural / BAM /
// format-detection / resource categories.
var (
	// Geometry errors.
	ErrBadTrack    = errors.New("disk: track out of range for this geometry")
	ErrBadSector   = errors.New("disk: sector out of range for this track")
	ErrBadLBA      = errors.New("disk: lba out of range for this geometry")
	ErrInvalidAddr = errors.New("disk: address is the unused sentinel")

	// Addressing errors.
	ErrEndOfImage       = errors.New("disk: advance past end of image")
	ErrEndOfTrack       = errors.New("disk: advance past end of track")
	ErrOutsidePartition = errors.New("disk: address crosses out of the active partition")

	// Structural errors.
	ErrLoopDetected       = errors.New("disk: loop detected in block chain")
	ErrBlockShared        = errors.New("disk: block already marked, shared between chains")
	ErrSideSectorMismatch = errors.New("disk: side-sector record-length mismatch")
	ErrSuperSideSectorBad = errors.New("disk: super-side-sector integrity check failed")
	ErrVLIRCorrupt        = errors.New("disk: GEOS VLIR record map corrupt")
	ErrDegenerateTerm     = errors.New("disk: degenerate terminator block (next-track=0, next-sector=0)")
	ErrBlockCountMismatch = errors.New("disk: declared block count does not match chain length")

	// BAM errors.
	ErrBAMBitOutOfRange = errors.New("disk: BAM bit set for a non-existent sector")
	ErrBAMCounterWrong  = errors.New("disk: BAM counter does not equal bitmap popcount")
	ErrBAMCounterTooBig = errors.New("disk: BAM counter exceeds sectors in track")
	ErrBAMConflict      = errors.New("disk: BAM block already in requested state")
	ErrNoSelector       = errors.New("disk: no BAM selector covers this track")

	// Format-detection errors.
	ErrUnknownFormat = errors.New("disk: image size matches no known format")
	ErrAmbiguousSize = errors.New("disk: image size is ambiguous without an explicit format hint")

	// Resource errors.
	ErrNotOpen     = errors.New("disk: image is not open")
	ErrRootFrame   = errors.New("disk: cannot chdir_close the root settings frame")
	ErrNotAPartDir = errors.New("disk: entry is not a partition or subdirectory")
	ErrCyclicChdir = errors.New("disk: settings stack would become cyclic")
)
