package squad

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInviteCodeUsesAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewInviteCode()
		require.NoError(t, err)
		require.Len(t, code, InviteCodeLength)
		require.True(t, ValidInviteCode(code), code)
	}
}

func TestNewInviteCodeSkipsBiasedBytes(t *testing.T) {
	source := bytes.NewReader(append(bytes.Repeat([]byte{255}, 18), []byte{0, 1, 2, 25, 26, 35, 36, 71, 72, 0, 0, 0, 0, 0, 0, 0, 0, 0}...))
	code, err := newInviteCode(source)
	require.NoError(t, err)
	require.Equal(t, "ABCZ09A9A", code)
}

func TestValidInviteCode(t *testing.T) {
	require.True(t, ValidInviteCode("ABC123XYZ"))
	require.False(t, ValidInviteCode("abc123xyz"))
	require.False(t, ValidInviteCode("ABC123"))
	require.False(t, ValidInviteCode(strings.Repeat("A", 10)))
	require.False(t, ValidInviteCode("ABC-23XYZ"))
}
