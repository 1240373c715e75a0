package status

import (
	"fmt"
	"strconv"
	"strings"
)

// Word is the opaque 16-bit boot status word. The store never interprets
// its bits.
type Word uint16

// Erased is what an erased flash slot reads as. It is never a stored value
// on flash.
const Erased Word = 0xFFFF

func (w Word) String() string {
	return fmt.Sprintf("0x%04x", uint16(w))
}

// Encode returns the 2-byte on-media form of w.
func (w Word) Encode() []byte {
	b := make([]byte, WordSize)
	ByteOrder.PutUint16(b, uint16(w))
	return b
}

// DecodeWord reads a word from the first WordSize bytes of b.
func DecodeWord(b []byte) (Word, error) {
	if len(b) < WordSize {
		return 0, fmt.Errorf("status word needs %d bytes, got %d", WordSize, len(b))
	}
	return Word(ByteOrder.Uint16(b)), nil
}

// ParseWord accepts decimal, 0x-prefixed hex, 0o/0b forms.
func ParseWord(s string) (Word, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty status word")
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid status word %q: %w", s, err)
	}
	return Word(v), nil
}
