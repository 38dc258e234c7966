package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sort"

	"fortio.org/safecast"
)

// File holds one loaded source's content and its line-start index.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	lineIdx []uint32 // byte offset of the start of each line
	Hash    [sha256.Size]byte
}

// FileSet owns every source file opened in one compilation and resolves
// byte offsets within a Span back to 1-based line/column pairs.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// AddContent registers in-memory content under path (used for stdin "-" and
// for LSP documents that have no file on disk) and returns its FileID.
func (fs *FileSet) AddContent(path string, content []byte) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n + 1)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		lineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
	})
	fs.index[path] = id
	return id
}

// Load reads path from disk and registers its contents.
func (fs *FileSet) Load(path string) (FileID, error) {
	if id, ok := fs.index[path]; ok {
		return id, nil
	}
	// #nosec G304 -- path comes from CLI arguments / driver file discovery
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, fmt.Errorf("read %s: %w", path, err)
	}
	return fs.AddContent(path, content), nil
}

// File returns the File for id, or nil if unknown.
func (fs *FileSet) File(id FileID) *File {
	for i := range fs.files {
		if fs.files[i].ID == id {
			return &fs.files[i]
		}
	}
	return nil
}

// Position is a resolved 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

// Position resolves a byte offset within file id into a line/column pair.
func (fs *FileSet) Position(id FileID, offset uint32) Position {
	f := fs.File(id)
	if f == nil {
		return Position{}
	}
	idx := sort.Search(len(f.lineIdx), func(i int) bool { return f.lineIdx[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	return Position{Line: idx + 1, Column: int(offset-f.lineIdx[idx]) + 1}
}

// Snippet returns the raw text of the line containing offset, for
// diagnostic rendering.
func (fs *FileSet) Snippet(id FileID, offset uint32) string {
	f := fs.File(id)
	if f == nil {
		return ""
	}
	pos := fs.Position(id, offset)
	start := f.lineIdx[pos.Line-1]
	end := uint32(len(f.Content))
	if pos.Line < len(f.lineIdx) {
		end = f.lineIdx[pos.Line]
	}
	line := f.Content[start:end]
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return string(line)
}

func buildLineIndex(content []byte) []uint32 {
	idx := []uint32{0}
	for i, b := range content {
		if b == '\n' && i+1 < len(content) {
			idx = append(idx, uint32(i+1))
		}
	}
	return idx
}
