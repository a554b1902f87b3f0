package source

// FileID uniquely identifies a source file known to the analysis.
type FileID uint32 // просто ID источника

// NoFileID marks the absence of a file.
const NoFileID FileID = 0

// IsValid reports whether the ID refers to a real file.
func (id FileID) IsValid() bool { return id != NoFileID }

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
