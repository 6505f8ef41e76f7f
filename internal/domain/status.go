package domain

import "strings"

// DocumentType classifies a catalog document
type DocumentType string

const (
	DocumentTypeTranscript DocumentType = "transcript"
	DocumentTypeCollection DocumentType = "collection"
	DocumentTypeSutra      DocumentType = "sutra"
)

// Format is the file format of the stored object
type Format string

const (
	FormatTXT  Format = "txt"
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatDOCX Format = "docx"
)

var supportedFormats = map[string]Format{
	"txt":  FormatTXT,
	"pdf":  FormatPDF,
	"epub": FormatEPUB,
	"docx": FormatDOCX,
}

// ParseFormat returns the format for a file extension (case-insensitive, no dot).
func ParseFormat(ext string) (Format, bool) {
	format, ok := supportedFormats[strings.ToLower(ext)]

	return format, ok
}

// IsText reports whether objects of this format carry decodable text content.
func (f Format) IsText() bool {
	return f == FormatTXT
}
