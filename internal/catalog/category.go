package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
)

// Category is a top-level folder of the content bucket with its own naming convention.
type Category string

const (
	CategoryDaan     Category = "大安法师"
	CategorySutras   Category = "佛教经典"
	CategoryYinguang Category = "印光大师文钞"
	CategoryShengan  Category = "省庵大师"
)

// keyPath is a bucket key split into its segments.
type keyPath struct {
	segments []string
	fileName string
	format   domain.Format
}

// rule projects a key of one category onto document metadata.
type rule func(p keyPath) (domain.ParsedMetadata, bool)

var rules = map[Category]rule{
	CategoryDaan:     parseDaan,
	CategorySutras:   standalone(CategorySutras, domain.DocumentTypeSutra),
	CategoryYinguang: standalone(CategoryYinguang, domain.DocumentTypeCollection),
	CategoryShengan:  standalone(CategoryShengan, domain.DocumentTypeCollection),
}

// Categories lists the known categories in a stable order.
func Categories() []Category {
	return []Category{CategoryDaan, CategorySutras, CategoryYinguang, CategoryShengan}
}

// jsSpace matches the same characters as \s in the folder names' originating tooling,
// which includes the ideographic space.
const jsSpace = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var (
	seriesFolderRe = regexp.MustCompile(`^\d+` + jsSpace + `+(.+?)` + jsSpace + `+\d+讲$`)
	episodeRe      = regexp.MustCompile(`第(\d+)讲`)
	txtSuffixRe    = regexp.MustCompile(`(?i)\.txt$`)
	pdfSuffixRe    = regexp.MustCompile(`(?i)\.pdf(\.pdf)?$`)
	extSuffixRe    = regexp.MustCompile(`\.\w+$`)
)

// minTranscriptDepth is category/collection/series/file.
const minTranscriptDepth = 4

func parseDaan(p keyPath) (domain.ParsedMetadata, bool) {
	switch {
	case p.format == domain.FormatTXT && len(p.segments) >= minTranscriptDepth:
		series := p.segments[2]
		if m := seriesFolderRe.FindStringSubmatch(series); m != nil {
			series = m[1]
		}

		var episode *int
		if m := episodeRe.FindStringSubmatch(p.fileName); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				episode = &n
			}
		}

		return domain.ParsedMetadata{
			Title:         txtSuffixRe.ReplaceAllString(p.fileName, ""),
			DocumentType:  domain.DocumentTypeTranscript,
			Category:      string(CategoryDaan),
			SeriesName:    &series,
			EpisodeNumber: episode,
			Format:        domain.FormatTXT,
		}, true
	case p.format == domain.FormatPDF:
		return domain.ParsedMetadata{
			Title:        pdfSuffixRe.ReplaceAllString(p.fileName, ""),
			DocumentType: domain.DocumentTypeCollection,
			Category:     string(CategoryDaan),
			Format:       domain.FormatPDF,
		}, true
	default:
		return domain.ParsedMetadata{}, false
	}
}

// standalone builds the rule for categories whose every file is its own document.
func standalone(category Category, docType domain.DocumentType) rule {
	return func(p keyPath) (domain.ParsedMetadata, bool) {
		return domain.ParsedMetadata{
			Title:        stripExtension(p.fileName),
			DocumentType: docType,
			Category:     string(category),
			Format:       p.format,
		}, true
	}
}

func stripExtension(name string) string {
	return extSuffixRe.ReplaceAllString(name, "")
}

// fileExtension returns the text after the last dot, or the whole name when there is none.
func fileExtension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
