package viewer

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeText applies the encoding fallback chain (spec.md §4.6 "detects
// encoding with a fallback chain"): a UTF-16 byte-order-mark first, then
// valid UTF-8 as-is, then Windows-1252 as the last resort so no byte
// sequence is ever rejected outright.
func decodeText(data []byte) string {
	if enc := bomEncoding(data); enc != nil {
		if out, err := enc.NewDecoder().Bytes(data); err == nil {
			return string(out)
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(out)
	}
	return string(bytes.ToValidUTF8(data, []byte{0xEF, 0xBF, 0xBD}))
}

// bomEncoding returns the encoding implied by a recognized byte-order
// mark, or nil if data carries none.
func bomEncoding(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM
	default:
		return nil
	}
}
