package viewer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeTextPassesThroughValidUTF8(t *testing.T) {
	require.Equal(t, "héllo", decodeText([]byte("héllo")))
}

func TestDecodeTextStripsUTF16LEBOM(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	require.Equal(t, "hi", decodeText(data))
}

func TestDecodeTextFallsBackToWindows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 but not valid standalone UTF-8.
	data := []byte{'c', 0xE9, 'p'}
	out := decodeText(data)
	require.Contains(t, out, "é")
}
