package disk

import "testing"

// newTestD64 builds a blank 174848-byte D64 image and opens it, giving
// tests a writable raw buffer (img.Raw) to poke directory/BAM bytes into
// before exercising the higher-level APIs.
func newTestD64(t *testing.T) *Image {
	t.Helper()
	data := make([]byte, 174848)
	img, err := Open(data, OpenOptions{FormatHint: FormatD64})
	if err != nil {
		t.Fatalf("open blank d64: %v", err)
	}
	return img
}

// d64BlockOffset returns the byte offset of (track,sector) within a blank
// D64's raw buffer, for tests that poke bytes directly.
func d64BlockOffset(track, sector uint8) int {
	addr, err := NewAddressFromTS(newD64Geometry(), track, sector)
	if err != nil {
		panic(err)
	}
	return (addr.LBA - 1) * bytesPerBlock
}
