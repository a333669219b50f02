package container

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Kind int

const (
	KindAIFF Kind = iota + 1
	KindCAF
)

func (k Kind) String() string {
	switch k {
	case KindAIFF:
		return "AIFF"
	case KindCAF:
		return "CAF"
	}
	return "unknown"
}

// Container is a decoded top-level chunk container. Chunks maps each
// identifier to its payload; when an identifier repeats the last one wins.
type Container struct {
	Kind Kind
	// FormType is the AIFF form type ("AIFF", "AIFC"); zero for CAF.
	FormType ID
	// DeclaredSize is the AIFF FORM size field; zero for CAF.
	DeclaredSize uint32
	// CAFVersion and CAFFlags come from the CAF file header.
	CAFVersion int16
	CAFFlags   int16

	Chunks map[ID][]byte
	Order  []Chunk
}

// Read decodes an AIFF (FORM) or CAF (caff) container held fully in memory.
func Read(data []byte) (*Container, error) {
	if len(data) < 8 {
		return nil, errors.Wrapf(ErrMalformedHeader, "container is %d bytes", len(data))
	}
	var magic ID
	copy(magic[:], data[:4])

	c := &Container{Chunks: make(map[ID][]byte)}
	var chunks []Chunk
	var err error
	switch magic {
	case MagicAIFF:
		if len(data) < 12 {
			return nil, errors.Wrap(ErrMalformedHeader, "FORM header is truncated")
		}
		c.Kind = KindAIFF
		c.DeclaredSize = binary.BigEndian.Uint32(data[4:8])
		copy(c.FormType[:], data[8:12])
		chunks, err = ReadChunks(data, 12, true)
	case MagicCAF:
		c.Kind = KindCAF
		c.CAFVersion = int16(binary.BigEndian.Uint16(data[4:6]))
		c.CAFFlags = int16(binary.BigEndian.Uint16(data[6:8]))
		chunks, err = readCAFChunks(data, 8)
	default:
		return nil, errors.Wrapf(ErrMalformedHeader, "unknown container magic %q", magic)
	}
	if err != nil {
		return nil, err
	}

	for _, ch := range chunks {
		if _, dup := c.Chunks[ch.ID]; dup {
			logrus.Debugf("Duplicate chunk %q at offset %d replaces earlier instance", ch.ID, ch.Offset)
		}
		c.Chunks[ch.ID] = ch.Payload
	}
	c.Order = chunks
	return c, nil
}

// Chunk returns the payload for id or ErrChunkNotFound.
func (c *Container) Chunk(id ID) ([]byte, error) {
	payload, ok := c.Chunks[id]
	if !ok {
		return nil, errors.Wrapf(ErrChunkNotFound, "%s container has no %q chunk", c.Kind, id)
	}
	return payload, nil
}

// MIDI returns the embedded event data: the ".mid" chunk of an Apple Loop
// AIFF or the "midi" chunk of a CAF file.
func (c *Container) MIDI() ([]byte, error) {
	if c.Kind == KindCAF {
		return c.Chunk(ChunkCAFMIDI)
	}
	return c.Chunk(ChunkMIDI)
}
