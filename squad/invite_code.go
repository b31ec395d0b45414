package squad

import (
	"crypto/rand"
	"io"
)

const (
	// InviteCodeLength is the fixed size of a squad invite code.
	InviteCodeLength = 9
	// InviteCodeAlphabet lists the characters an invite code may contain.
	InviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// largest multiple of the alphabet size that fits in a byte
const inviteCodeByteLimit = 256 - 256%len(InviteCodeAlphabet)

// NewInviteCode draws an invite code from crypto/rand.
func NewInviteCode() (string, error) {
	return newInviteCode(rand.Reader)
}

func newInviteCode(source io.Reader) (string, error) {
	code := make([]byte, 0, InviteCodeLength)
	buf := make([]byte, InviteCodeLength*2)
	for len(code) < InviteCodeLength {
		if _, err := io.ReadFull(source, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= inviteCodeByteLimit {
				continue
			}
			code = append(code, InviteCodeAlphabet[int(b)%len(InviteCodeAlphabet)])
			if len(code) == InviteCodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// ValidInviteCode reports whether code has the expected length and alphabet.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
