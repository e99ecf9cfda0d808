package source

import (
	"bytes"
	"sort"

	"fortio.org/safecast"
)

// FileID identifies a file within its FileSet.
type FileID uint32

// FileFlags records how a file's bytes were obtained.
type FileFlags uint8

const (
	// FileVirtual marks files added from memory rather than disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one compiled source text. Content is stored after BOM removal
// and CRLF folding; spans index into it.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineStarts holds the offset of the first byte of every line.
	LineStarts []uint32
	Hash       [32]byte
	Flags      FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode strips a UTF-8 BOM and folds \r\n to \n. A lone \r is kept.
func decode(raw []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
		flags |= FileHadBOM
	}
	if bytes.Contains(raw, []byte("\r\n")) {
		raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return raw, flags
}

func lineStarts(content []byte) []uint32 {
	starts := []uint32{0}
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return starts
		}
		off += i + 1
		next, err := safecast.Conv[uint32](off)
		if err != nil {
			return starts
		}
		starts = append(starts, next)
	}
}

// Position converts a byte offset to a line and column. A newline
// belongs to the line it ends.
func (f *File) Position(off uint32) LineCol {
	if len(f.LineStarts) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	line := sort.Search(len(f.LineStarts), func(i int) bool { return f.LineStarts[i] > off }) - 1
	n, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: n, Col: off - f.LineStarts[line] + 1}
}

// GetLine returns line n (1-based) without its newline, or "" when n is
// out of range.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.LineStarts) {
		return ""
	}
	start := int(f.LineStarts[n-1])
	end := len(f.Content)
	if int(n) < len(f.LineStarts) {
		end = int(f.LineStarts[n]) - 1
	}
	if start > end || end > len(f.Content) {
		return ""
	}
	return string(f.Content[start:end])
}
