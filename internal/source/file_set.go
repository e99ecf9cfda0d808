package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns the files of one compilation. IDs are dense indexes in
// insertion order; adding a path twice yields two files.
type FileSet struct {
	files []*File
}

func NewFileSet() *FileSet {
	return &FileSet{}
}

// Add registers already-decoded content under path.
func (s *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(s.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	f := &File{
		ID:         FileID(n),
		Path:       filepath.ToSlash(filepath.Clean(path)),
		Content:    content,
		LineStarts: lineStarts(content),
		Hash:       sha256.Sum256(content),
		Flags:      flags,
	}
	s.files = append(s.files, f)
	return f.ID
}

// Load reads path from disk and decodes it before adding.
func (s *FileSet) Load(path string) (FileID, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- compiling a user-named file is the point
	if err != nil {
		return 0, err
	}
	content, flags := decode(raw)
	return s.Add(path, content, flags), nil
}

// AddVirtual adds in-memory source such as stdin or a test fixture.
func (s *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := decode(content)
	return s.Add(name, content, flags|FileVirtual)
}

func (s *FileSet) Get(id FileID) *File {
	return s.files[id]
}

// Resolve returns the start and end positions of span. Spans of unknown
// files resolve to 1:1.
func (s *FileSet) Resolve(span Span) (start, end LineCol) {
	if int(span.File) >= len(s.files) {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	f := s.files[span.File]
	return f.Position(span.Start), f.Position(span.End)
}
