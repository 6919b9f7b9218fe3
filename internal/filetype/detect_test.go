package filetype_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/filetype"
)

func TestDetectKindText(t *testing.T) {
	require.Equal(t, filetype.KindText, filetype.DetectKind([]byte("hello world\n")))
}

func TestDetectKindBinary(t *testing.T) {
	require.Equal(t, filetype.KindBinary, filetype.DetectKind([]byte{'h', 0x00, 'i'}))
}
