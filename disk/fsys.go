package disk

import (
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FS projects an Image's active frame as a read-only io/fs.FS, generalizing
// juster-c64's diskfs.go (a single-format fs.FS) across every format and
// across nested CMD partitions/1581 subdirectories.
type FS struct {
	img *Image
}

// NewFS wraps img's active frame for fs.FS-style traversal starting from
// the image's current directory.
func NewFS(img *Image) FS {
	return FS{img: img}
}

var _ fs.FS = FS{}
var _ fs.ReadDirFS = FS{}
var _ fs.StatFS = FS{}

// resolve walks name's "/"-separated path components as a sequence of
// Chdir calls against a private clone of the settings stack, returning the
// frame the path ends in (for a directory) plus, if the last component
// names a file, its directory entry.
func (f FS) resolve(name string) (*Settings, *DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	active := f.img.Active()
	if name == "." {
		return active, nil, nil
	}

	parts := strings.Split(name, "/")
	cur := active
	for i, part := range parts {
		entry, err := findEntry(cur, part)
		if err != nil {
			return nil, nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		last := i == len(parts)-1
		if last && entry.Type != EntryPartition1581 && entry.Type != EntryCMDNative {
			return cur, entry, nil
		}
		child, err := cur.Adapter.Chdir(cur, entry)
		if err != nil {
			return nil, nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		cur = child
	}
	return cur, nil, nil
}

func findEntry(s *Settings, name string) (*DirEntry, error) {
	it, err := s.OpenDir()
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for {
		entry, err := it.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, fs.ErrNotExist
		}
		if entryFileName(entry) == name {
			return entry, nil
		}
	}
}

// entryFileName renders a directory entry's fs.FS-visible name: PETSCII
// name plus a lowercase CBM-style extension so names stay distinct (two
// files with the same PETSCII name but different types are legal on a real
// disk, though rare).
func entryFileName(e *DirEntry) string {
	if e.PartitionKind != PartitionUnknown || e.Type == EntryPartition1581 || e.Type == EntryCMDNative {
		return e.Name
	}
	return e.Name + "." + strings.ToLower(e.Type.String())
}

// Open implements fs.FS.
func (f FS) Open(name string) (fs.File, error) {
	dir, entry, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &dirFile{s: dir, name: name}, nil
	}
	return newDiskFile(dir, entry, name)
}

// ReadDir implements fs.ReadDirFS.
func (f FS) ReadDir(name string) ([]fs.DirEntry, error) {
	dir, entry, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}
	return listEntries(dir)
}

// Stat implements fs.StatFS.
func (f FS) Stat(name string) (fs.FileInfo, error) {
	_, entry, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return dirFileInfo{name: path.Base(name)}, nil
	}
	return entryFileInfo{entry: entry}, nil
}

func listEntries(s *Settings) ([]fs.DirEntry, error) {
	it, err := s.OpenDir()
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []fs.DirEntry
	for {
		entry, err := it.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		out = append(out, entryFileInfo{entry: entry})
	}
	return out, nil
}

// entryFileInfo adapts a DirEntry to fs.FileInfo and fs.DirEntry.
type entryFileInfo struct {
	entry *DirEntry
}

func (e entryFileInfo) Name() string { return entryFileName(e.entry) }
func (e entryFileInfo) Size() int64  { return int64(e.entry.BlockCount) * 254 }
func (e entryFileInfo) Mode() fs.FileMode {
	if e.entry.Type == EntryPartition1581 || e.entry.Type == EntryCMDNative {
		return fs.ModeDir | 0555
	}
	return 0444
}
func (e entryFileInfo) ModTime() time.Time {
	if !e.entry.HasDateTime {
		return time.Time{}
	}
	year := 1900 + int(e.entry.Year)
	if e.entry.Year < 83 {
		year = 2000 + int(e.entry.Year)
	}
	return time.Date(year, time.Month(e.entry.Month), int(e.entry.Day), int(e.entry.Hour), int(e.entry.Minute), 0, 0, time.UTC)
}
func (e entryFileInfo) IsDir() bool                { return e.Mode().IsDir() }
func (e entryFileInfo) Sys() any                   { return e.entry }
func (e entryFileInfo) Type() fs.FileMode          { return e.Mode().Type() }
func (e entryFileInfo) Info() (fs.FileInfo, error) { return e, nil }

// dirFileInfo represents a directory/partition frame itself (the "." entry
// or a partition/subdirectory reached mid-path).
type dirFileInfo struct{ name string }

func (d dirFileInfo) Name() string               { return d.name }
func (d dirFileInfo) Size() int64                { return 0 }
func (d dirFileInfo) Mode() fs.FileMode          { return fs.ModeDir | 0555 }
func (d dirFileInfo) ModTime() time.Time         { return time.Time{} }
func (d dirFileInfo) IsDir() bool                { return true }
func (d dirFileInfo) Sys() any                   { return nil }
func (d dirFileInfo) Type() fs.FileMode          { return fs.ModeDir }
func (d dirFileInfo) Info() (fs.FileInfo, error) { return d, nil }

// dirFile implements fs.ReadDirFile for a directory/partition frame.
type dirFile struct {
	s    *Settings
	name string
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return dirFileInfo{name: path.Base(d.name)}, nil }
func (d *dirFile) Read([]byte) (int, error)   { return 0, &fs.PathError{Op: "read", Path: d.name, Err: errors.New("is a directory")} }
func (d *dirFile) Close() error               { return nil }
func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	all, err := listEntries(d.s)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return all, nil
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// diskFile implements fs.File over a file's block chain, reading it
// sequentially and trimming the final block to LastResult() bytes (spec
// §4.5).
type diskFile struct {
	entry *DirEntry
	name  string
	chain *Chain

	buf    []byte
	bufPos int
	eof    bool
}

func newDiskFile(s *Settings, entry *DirEntry, name string) (*diskFile, error) {
	df := &diskFile{entry: entry, name: name}
	if !entry.StartBlock.IsValid() {
		df.eof = true
		return df, nil
	}
	ch, err := NewChain(s, entry.StartBlock)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	df.chain = ch
	df.loadCurrentBlock()
	return df, nil
}

func (d *diskFile) loadCurrentBlock() {
	data := d.chain.Data()
	if d.chain.IsDone() {
		n := d.chain.LastResult()
		if n < 0 {
			n = 0
		} else if n == 0 {
			n = 256
		}
		if n > len(data) {
			n = len(data)
		}
		d.buf = data[2:n]
	} else {
		d.buf = data[2:]
	}
	d.bufPos = 0
}

func (d *diskFile) Read(p []byte) (int, error) {
	if d.eof {
		return 0, io.EOF
	}
	total := 0
	for total < len(p) {
		if d.bufPos >= len(d.buf) {
			if d.chain.IsDone() {
				d.eof = true
				break
			}
			if err := d.chain.Advance(); err != nil {
				d.eof = true
				if total == 0 {
					return 0, err
				}
				break
			}
			d.loadCurrentBlock()
			continue
		}
		n := copy(p[total:], d.buf[d.bufPos:])
		d.bufPos += n
		total += n
	}
	if total == 0 && d.eof {
		return 0, io.EOF
	}
	return total, nil
}

func (d *diskFile) Stat() (fs.FileInfo, error) { return entryFileInfo{entry: d.entry}, nil }
func (d *diskFile) Close() error               { return nil }
