// Package sequ scans Apple Loop Sequ chunks for fixed-size records. Only a
// handful of record offsets have an observed meaning; every other byte is
// kept so that variance across records can be compared by hand.
package sequ

import (
	"encoding/binary"
	"fmt"
)

const (
	RecordSize = 32

	// ChordEventType is the discriminator observed on chord/voice records.
	ChordEventType uint16 = 103
)

const (
	offType      = 0x00
	offMask      = 0x04
	offB8        = 0x08
	offB9        = 0x09
	offComposite = 0x18
)

// Record is one 32-byte window whose discriminator matched.
type Record struct {
	Offset int
	Raw    [RecordSize]byte
}

// Fields is the decoded view of the documented offsets.
type Fields struct {
	Type      uint16
	Mask      uint16
	B8        byte
	B9        byte
	Composite Composite
}

// Composite is the big-endian u32 at 0x18. The split into two 16-bit halves
// is a working hypothesis.
type Composite uint32

func (c Composite) High() uint16 { return uint16(c >> 16) }
func (c Composite) Low() uint16  { return uint16(c) }

func (r Record) Fields() Fields {
	return Fields{
		Type:      binary.LittleEndian.Uint16(r.Raw[offType:]),
		Mask:      binary.LittleEndian.Uint16(r.Raw[offMask:]),
		B8:        r.Raw[offB8],
		B9:        r.Raw[offB9],
		Composite: Composite(binary.BigEndian.Uint32(r.Raw[offComposite:])),
	}
}

// Documented reports whether a record offset belongs to a decoded field.
func Documented(off int) bool {
	switch {
	case off >= offType && off < offType+2,
		off >= offMask && off < offMask+2,
		off == offB8, off == offB9,
		off >= offComposite && off < offComposite+4:
		return true
	}
	return false
}

// OtherByte is a byte at an undocumented offset.
type OtherByte struct {
	Offset int
	Value  byte
}

// Other returns the bytes at every undocumented offset in offset order.
func (r Record) Other() []OtherByte {
	other := make([]OtherByte, 0, RecordSize-10)
	for i, b := range r.Raw {
		if !Documented(i) {
			other = append(other, OtherByte{Offset: i, Value: b})
		}
	}
	return other
}

// Hex renders the raw bytes as space separated hex pairs.
func (r Record) Hex() string {
	return fmt.Sprintf("% x", r.Raw[:])
}

// Scan returns every 32-byte window of region, at even offsets, whose u16 LE
// discriminator equals want. Overlapping matches are all reported.
func Scan(region []byte, want uint16) []Record {
	var records []Record
	for off := 0; off+RecordSize <= len(region); off += 2 {
		if binary.LittleEndian.Uint16(region[off:]) != want {
			continue
		}
		records = append(records, Record{Offset: off, Raw: [RecordSize]byte(region[off : off+RecordSize])})
	}
	return records
}
