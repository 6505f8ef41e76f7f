// Package catalog turns the objects of a content bucket into catalog documents.
package catalog

import (
	"strings"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
)

// ParseKey derives document metadata from a bucket key. It reports false for keys of
// unknown categories, unsupported formats, or paths that do not fit their category's
// naming convention.
func ParseKey(key string) (domain.ParsedMetadata, bool) {
	segments := strings.Split(key, "/")
	fileName := segments[len(segments)-1]

	format, ok := domain.ParseFormat(fileExtension(fileName))
	if !ok {
		return domain.ParsedMetadata{}, false
	}

	parse, ok := rules[Category(segments[0])]
	if !ok {
		return domain.ParsedMetadata{}, false
	}

	return parse(keyPath{segments: segments, fileName: fileName, format: format})
}
