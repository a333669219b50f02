package container

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Information is one key/value entry from a CAF "info" chunk.
type Information struct {
	Key   string
	Value string
}

// DecodeInfo decodes a CAF strings chunk: a u32 entry count followed by
// NUL-terminated key and value strings.
func DecodeInfo(payload []byte) ([]Information, error) {
	if len(payload) < 4 {
		return nil, errors.Wrap(ErrTruncatedContainer, "info chunk has no entry count")
	}
	numEntries := binary.BigEndian.Uint32(payload[:4])
	rest := payload[4:]
	var entries []Information
	for i := uint32(0); i < numEntries; i++ {
		var info Information
		var err error
		if info.Key, rest, err = readString(rest); err != nil {
			return entries, errors.Wrapf(err, "info entry %d key", i)
		}
		if info.Value, rest, err = readString(rest); err != nil {
			return entries, errors.Wrapf(err, "info entry %d value", i)
		}
		entries = append(entries, info)
	}
	return entries, nil
}

func readString(b []byte) (string, []byte, error) {
	idx := bytes.IndexByte(b, 0)
	if idx < 0 {
		return "", nil, ErrTruncatedContainer
	}
	return string(b[:idx]), b[idx+1:], nil
}
