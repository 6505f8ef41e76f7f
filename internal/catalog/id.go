package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	maxSlugLength = 120
	truncatedSlug = 110
	maxHashSuffix = 8
)

var (
	bracketRe   = regexp.MustCompile(`[（）()《》\[\]【】]`)
	nonSlugRe   = regexp.MustCompile(`[^\x{4e00}-\x{9fa5}a-zA-Z0-9]+`)
	hyphenRunRe = regexp.MustCompile(`-+`)
)

// GenerateID returns the catalog id for a bucket key. The id is a slug of the key without
// its extension; slugs longer than 120 characters are cut to 110 and suffixed with a hash
// of the full key so that long keys sharing a prefix stay distinct.
//
// Ids are not checked against the existing catalog. Two keys whose truncated slugs and
// hashes both match would map to the same id.
func GenerateID(key string) string {
	slug := []rune(Slugify(stripExtension(key)))
	if len(slug) <= maxSlugLength {
		return string(slug)
	}
	return string(slug[:truncatedSlug]) + "-" + keyHash(key)
}

// Slugify keeps CJK ideographs, ASCII letters and digits, joining everything else with
// single hyphens.
func Slugify(s string) string {
	s = bracketRe.ReplaceAllString(s, "")
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	return strings.ToLower(s)
}

// keyHash is a 32-bit rolling hash (h*31 + unit) over the UTF-16 code units of key,
// rendered as the base-36 absolute value.
func keyHash(key string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(key)) {
		h = (h << 5) - h + int32(unit)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	out := strconv.FormatInt(abs, 36)
	if len(out) > maxHashSuffix {
		out = out[:maxHashSuffix]
	}
	return out
}
