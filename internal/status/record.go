package status

import (
	"bytes"
	"fmt"
	"strings"
)

// Slot names one of the description fields of the record.
type Slot int

const (
	SlotBootloader Slot = iota
	SlotOSA
	SlotOSB
)

// Slots lists every description slot in record order.
var Slots = []Slot{SlotBootloader, SlotOSA, SlotOSB}

func (s Slot) String() string {
	switch s {
	case SlotBootloader:
		return "bl"
	case SlotOSA:
		return "os-a"
	case SlotOSB:
		return "os-b"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Valid reports whether s is one of the record's slots.
func (s Slot) Valid() bool {
	return s >= SlotBootloader && s <= SlotOSB
}

// Offset returns the byte offset of the slot's field within the record.
func (s Slot) Offset() int {
	return OffsetBootloader + int(s)*DescriptionSize
}

// ParseSlot maps a slot name to a Slot. "a"/"b" are accepted for the OS images.
func ParseSlot(name string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bl", "bootloader":
		return SlotBootloader, nil
	case "os-a", "os_a", "a":
		return SlotOSA, nil
	case "os-b", "os_b", "b":
		return SlotOSB, nil
	}
	return 0, fmt.Errorf("unknown description slot %q (want bl, os-a or os-b)", name)
}

// EncodeDescription returns the fixed-width field for text. Text longer than
// DescriptionMaxChars is truncated; the field is always NUL-terminated and
// NUL-padded.
// No IO. No side effects.
func EncodeDescription(text string) []byte {
	field := make([]byte, DescriptionSize)
	n := len(text)
	if n > DescriptionMaxChars {
		n = DescriptionMaxChars
	}
	copy(field, text[:n])
	return field
}

// DecodeDescription returns the text of a field up to its first NUL.
func DecodeDescription(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	if len(field) > DescriptionMaxChars {
		field = field[:DescriptionMaxChars]
	}
	return string(field)
}

// NormalizeDescription is the text a description reads back as after
// being stored.
func NormalizeDescription(text string) string {
	return DecodeDescription(EncodeDescription(text))
}

// Record is the decoded direct record.
type Record struct {
	Descriptions [3]string
	Reserved     [ReservedSize]byte
	Status       Word
}

// DecodeRecord parses a full on-device record.
func DecodeRecord(b []byte) (Record, error) {
	var r Record
	if len(b) < RecordSize {
		return r, fmt.Errorf("record needs %d bytes, got %d", RecordSize, len(b))
	}
	for _, s := range Slots {
		off := s.Offset()
		r.Descriptions[s] = DecodeDescription(b[off : off+DescriptionSize])
	}
	copy(r.Reserved[:], b[OffsetReserved:OffsetReserved+ReservedSize])
	r.Status = Word(ByteOrder.Uint16(b[OffsetStatus:]))
	return r, nil
}

// Encode converts the record into its on-device form.
// Layout is format-locked.
func (r Record) Encode() []byte {
	b := make([]byte, RecordSize)
	for _, s := range Slots {
		copy(b[s.Offset():], EncodeDescription(r.Descriptions[s]))
	}
	copy(b[OffsetReserved:], r.Reserved[:])
	ByteOrder.PutUint16(b[OffsetStatus:], uint16(r.Status))
	return b
}

// Description returns the text for slot s, or "" for an invalid slot.
func (r Record) Description(s Slot) string {
	if !s.Valid() {
		return ""
	}
	return r.Descriptions[s]
}
