package disk

import "fmt"

// Hooks bundles the process-wide print and allocator callbacks described in
// spec §5/§9. Installation is not goroutine-safe and is meant to happen once
// at startup, before any Image is opened — mirroring juster-c64/cmd/d64's
// package-level log configuration in main().
type Hooks struct {
	Print func(format string, args ...interface{})
	Alloc func(size int) []byte
	Free  func(buf []byte)
	Copy  func(src []byte) []byte
}

func defaultPrint(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func defaultAlloc(size int) []byte { return make([]byte, size) }

func defaultFree(_ []byte) {}

func defaultCopy(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

var globalHooks = Hooks{
	Print: defaultPrint,
	Alloc: defaultAlloc,
	Free:  defaultFree,
	Copy:  defaultCopy,
}

// SetPrintFunc installs the process-wide print callback. Per spec §9's open
// question, this intentionally returns nothing — the C source's declared
// `int` return carried no meaningful value.
func SetPrintFunc(fn func(format string, args ...interface{})) {
	if fn == nil {
		fn = defaultPrint
	}
	globalHooks.Print = fn
}

// SetAllocFuncs installs the process-wide alloc/free/alloc-and-copy triple.
func SetAllocFuncs(alloc func(int) []byte, free func([]byte), cp func([]byte) []byte) {
	if alloc == nil {
		alloc = defaultAlloc
	}
	if free == nil {
		free = defaultFree
	}
	if cp == nil {
		cp = defaultCopy
	}
	globalHooks.Alloc = alloc
	globalHooks.Free = free
	globalHooks.Copy = cp
}

// NewHooks returns a fresh Hooks value seeded with the current global
// defaults, for callers who'd rather thread an explicit configuration
// through OpenOptions than mutate process-wide state.
func NewHooks() Hooks {
	return globalHooks
}

func (h Hooks) print(format string, args ...interface{}) {
	p := h.Print
	if p == nil {
		p = defaultPrint
	}
	p(format, args...)
}
