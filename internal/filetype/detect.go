// Package filetype classifies a file as text or binary ahead of the
// text viewer attempting to decode and display it (spec.md §4.6 "Text
// viewer"): a binary file is never worth running through the encoding
// fallback chain and line-splitting machinery.
package filetype

import "bytes"

// Kind is a file's coarse content classification.
type Kind int

const (
	KindText Kind = iota
	KindBinary
)

func (k Kind) String() string {
	if k == KindBinary {
		return "binary"
	}
	return "text"
}

// DetectKind classifies a content sample (typically the first few
// hundred bytes read off the storage abstraction) by the presence of a
// NUL byte, the same heuristic most text editors and pagers use.
func DetectKind(sample []byte) Kind {
	if bytes.IndexByte(sample, 0) >= 0 {
		return KindBinary
	}
	return KindText
}
