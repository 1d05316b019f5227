// Package models defines client-side data models used by the permalink CLI.
package models

// File is one member of an upload batch. Size is the declared size; the
// batch validator sums declared sizes, the uploader sends Content.
type File struct {
	Name    string
	Content []byte
	Size    int64
}

// NewFile builds a File whose declared size matches its content.
func NewFile(name string, content []byte) File {
	return File{Name: name, Content: content, Size: int64(len(content))}
}

// ValidationResult is the outcome of checking a batch against size policy.
type ValidationResult struct {
	Valid      bool
	TotalBytes int64
	Errors     []string
}
