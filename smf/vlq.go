package smf

import (
	"math"

	"github.com/pkg/errors"
)

// maxVLQLen is the longest encoding of a uint64 (ten 7-bit groups).
const maxVLQLen = 10

// DecodeVLQ reads a variable-length quantity starting at pos and returns the
// value and the position just past its last byte.
func DecodeVLQ(buf []byte, pos int) (uint64, int, error) {
	var res uint64
	start := pos
	for {
		if pos >= len(buf) {
			return 0, pos, errors.Wrapf(ErrTruncatedInput, "quantity at offset %d", start)
		}
		if pos-start >= maxVLQLen {
			return 0, pos, errors.Wrapf(ErrVLQOverflow, "quantity at offset %d", start)
		}
		if res > math.MaxUint64>>7 {
			return 0, pos, errors.Wrapf(ErrVLQOverflow, "quantity at offset %d exceeds 64 bits", start)
		}
		byt := buf[pos]
		pos++
		res = res<<7 | uint64(byt&0x7f)
		if byt&0x80 == 0 {
			return res, pos, nil
		}
	}
}

// EncodeVLQ returns the shortest encoding of v.
func EncodeVLQ(v uint64) []byte {
	return AppendVLQ(nil, v)
}

// AppendVLQ appends the shortest encoding of v to dst.
func AppendVLQ(dst []byte, v uint64) []byte {
	var byts [10]byte
	i := len(byts) - 1
	byts[i] = byte(v & 0x7f)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		byts[i] = byte(v&0x7f) | 0x80
	}
	return append(dst, byts[i:]...)
}
