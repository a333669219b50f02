package container

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrTruncatedContainer = errors.New("truncated container")
	ErrMalformedHeader    = errors.New("malformed header")
	ErrChunkNotFound      = errors.New("chunk not found")
)

const chunkHeaderSize = 8

type Chunk struct {
	ID      ID
	Offset  int // offset of the chunk header in the source buffer
	Payload []byte
}

// ReadChunks walks `id | u32 BE size | payload` records starting at pos until
// fewer than eight bytes remain. When padded is set, odd-sized payloads are
// followed by one pad byte that is skipped. Payloads alias data.
func ReadChunks(data []byte, pos int, padded bool) ([]Chunk, error) {
	var chunks []Chunk
	for pos+chunkHeaderSize <= len(data) {
		var c Chunk
		copy(c.ID[:], data[pos:pos+4])
		c.Offset = pos
		size := int64(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		start := pos + chunkHeaderSize
		if size > int64(len(data)-start) {
			return chunks, errors.Wrapf(ErrTruncatedContainer,
				"chunk %q at offset %d declares %d bytes, %d remain", c.ID, pos, size, len(data)-start)
		}
		end := start + int(size)
		c.Payload = data[start:end:end]
		chunks = append(chunks, c)
		pos = end
		if padded && size%2 == 1 {
			pos++
		}
	}
	return chunks, nil
}

// readCAFChunks walks CAF chunks, which carry i64 sizes and no padding. A size
// of -1 is only legal on the audio data chunk and extends to the end of data.
func readCAFChunks(data []byte, pos int) ([]Chunk, error) {
	const cafChunkHeaderSize = 12
	var chunks []Chunk
	for pos+cafChunkHeaderSize <= len(data) {
		var c Chunk
		copy(c.ID[:], data[pos:pos+4])
		c.Offset = pos
		size := int64(binary.BigEndian.Uint64(data[pos+4 : pos+12]))
		start := pos + cafChunkHeaderSize
		remaining := int64(len(data) - start)
		switch {
		case size == -1 && c.ID == ChunkCAFData:
			size = remaining
		case size < 0 || size > remaining:
			return chunks, errors.Wrapf(ErrTruncatedContainer,
				"chunk %q at offset %d declares %d bytes, %d remain", c.ID, pos, size, remaining)
		}
		end := start + int(size)
		c.Payload = data[start:end:end]
		chunks = append(chunks, c)
		pos = end
	}
	return chunks, nil
}
