package catalog

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// Encoding names the charset a text object was decoded with.
type Encoding string

const (
	EncodingUTF8 Encoding = "utf-8"
	EncodingGBK  Encoding = "gbk"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText returns the best-effort text of a txt object.
func DecodeText(raw []byte) string {
	text, _ := Decode(raw)
	return text
}

// Decode tries UTF-8 first and falls back to GBK when the UTF-8 reading contains
// replacement characters. If GBK decoding fails the UTF-8 reading is kept.
func Decode(raw []byte) (string, Encoding) {
	text := strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), string(utf8.RuneError))
	if !strings.ContainsRune(text, utf8.RuneError) {
		return text, EncodingUTF8
	}

	gbk, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return text, EncodingUTF8
	}
	return string(gbk), EncodingGBK
}
