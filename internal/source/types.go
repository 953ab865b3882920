package source

// FileID indexes FileSet.files in load order.
type FileID uint32

// FileFlags records how the content was obtained and normalised.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // added from memory: tests, fuzzing, stdin
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // CRLF line endings were rewritten to LF
)

// File is one loaded script. Content is already normalised; LineIdx holds
// the byte offset of every '\n'.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte // sha256 of Content, the disk cache key
	Flags   FileFlags
}

// LineCol is a 1-based line and column (columns count bytes).
type LineCol struct {
	Line uint32
	Col  uint32
}
