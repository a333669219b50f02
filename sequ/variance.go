package sequ

import (
	"slices"
)

// Class describes how a byte offset behaves across a record set.
type Class int

const (
	Varies Class = iota
	ConstantZero
	ConstantNonZero
)

func (c Class) String() string {
	switch c {
	case Varies:
		return "varies"
	case ConstantZero:
		return "constant"
	case ConstantNonZero:
		return "const non-0"
	}
	return "unknown"
}

// Variation is the value history of one offset.
type Variation struct {
	Offset   int
	Values   []byte
	Distinct []byte
	Class    Class
}

// Variance reports, for every offset of the record layout, the values seen
// in record order and how they vary. It returns nil for an empty record set.
func Variance(records []Record) []Variation {
	if len(records) == 0 {
		return nil
	}
	out := make([]Variation, RecordSize)
	for off := range out {
		values := make([]byte, len(records))
		for i, r := range records {
			values[i] = r.Raw[off]
		}
		distinct := slices.Clone(values)
		slices.Sort(distinct)
		distinct = slices.Compact(distinct)

		class := Varies
		if len(distinct) == 1 {
			class = ConstantNonZero
			if distinct[0] == 0 {
				class = ConstantZero
			}
		}
		out[off] = Variation{Offset: off, Values: values, Distinct: distinct, Class: class}
	}
	return out
}
