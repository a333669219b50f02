package container

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func aiffChunk(id string, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.BigEndian, uint32(len(payload)))
	b.Write(payload)
	if len(payload)%2 == 1 {
		b.WriteByte(0)
	}
	return b.Bytes()
}

func aiffFile(chunks ...[]byte) []byte {
	body := bytes.Join(chunks, nil)
	var b bytes.Buffer
	b.WriteString("FORM")
	binary.Write(&b, binary.BigEndian, uint32(len(body)+4))
	b.WriteString("AIFF")
	b.Write(body)
	return b.Bytes()
}

func TestReadAIFF(t *testing.T) {
	data := aiffFile(
		aiffChunk("COMM", []byte{1, 2, 3}),
		aiffChunk(".mid", []byte("MThd")),
		aiffChunk("Sequ", []byte{9, 8, 7, 6, 5}),
	)
	c, err := Read(data)
	require.NoError(t, err)
	require.Equal(t, KindAIFF, c.Kind)
	require.Equal(t, NewID("AIFF"), c.FormType)
	require.Equal(t, uint32(len(data)-8), c.DeclaredSize)
	require.Len(t, c.Order, 3)
	require.Equal(t, []byte{1, 2, 3}, c.Chunks[NewID("COMM")])
	require.Equal(t, []byte{9, 8, 7, 6, 5}, c.Chunks[ChunkSequence])

	midi, err := c.MIDI()
	require.NoError(t, err)
	require.Equal(t, []byte("MThd"), midi)
}

func TestReadLastChunkWins(t *testing.T) {
	data := aiffFile(
		aiffChunk("basc", []byte{1}),
		aiffChunk("basc", []byte{2, 2}),
	)
	c, err := Read(data)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 2}, c.Chunks[ChunkLoop])
	require.Len(t, c.Order, 2)
}

func TestReadTruncated(t *testing.T) {
	data := aiffFile(aiffChunk("Sequ", make([]byte, 16)))
	_, err := Read(data[:len(data)-4])
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTruncatedContainer))
}

func TestReadIgnoresShortTail(t *testing.T) {
	data := append(aiffFile(aiffChunk("Sequ", []byte{1, 2})), 0, 0, 0)
	c, err := Read(data)
	require.NoError(t, err)
	require.Len(t, c.Order, 1)
}

func TestReadMalformedHeader(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong magic", []byte("RIFF\x00\x00\x00\x04WAVE")},
		{"short form", []byte("FORM\x00\x00\x00\x00")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(tc.data)
			require.True(t, errors.Is(err, ErrMalformedHeader))
		})
	}
}

func TestChunkNotFound(t *testing.T) {
	c, err := Read(aiffFile(aiffChunk("COMM", []byte{0, 0})))
	require.NoError(t, err)
	_, err = c.Chunk(ChunkSequence)
	require.True(t, errors.Is(err, ErrChunkNotFound))
	_, err = c.MIDI()
	require.True(t, errors.Is(err, ErrChunkNotFound))
}

func cafChunk(id string, size int64, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.BigEndian, size)
	b.Write(payload)
	return b.Bytes()
}

func TestReadCAF(t *testing.T) {
	var info bytes.Buffer
	binary.Write(&info, binary.BigEndian, uint32(2))
	info.WriteString("encoder\x00Lavf60.3.100\x00title\x00loop\x00")

	var data bytes.Buffer
	data.WriteString("caff")
	binary.Write(&data, binary.BigEndian, int16(1))
	binary.Write(&data, binary.BigEndian, int16(0))
	data.Write(cafChunk("info", int64(info.Len()), info.Bytes()))
	data.Write(cafChunk("midi", 3, []byte{0x90, 0x3c, 0x64}))
	data.Write(cafChunk("data", -1, []byte{0, 0, 0, 0, 1, 2, 3}))

	c, err := Read(data.Bytes())
	require.NoError(t, err)
	require.Equal(t, KindCAF, c.Kind)
	require.Equal(t, int16(1), c.CAFVersion)
	require.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3}, c.Chunks[ChunkCAFData])

	midi, err := c.MIDI()
	require.NoError(t, err)
	require.Equal(t, []byte{0x90, 0x3c, 0x64}, midi)

	entries, err := DecodeInfo(c.Chunks[ChunkCAFInfo])
	require.NoError(t, err)
	require.Equal(t, []Information{
		{Key: "encoder", Value: "Lavf60.3.100"},
		{Key: "title", Value: "loop"},
	}, entries)
}

func TestDecodeInfoTruncated(t *testing.T) {
	payload := []byte{0, 0, 0, 1, 'k', 0, 'v'}
	_, err := DecodeInfo(payload)
	require.True(t, errors.Is(err, ErrTruncatedContainer))
}

func TestDecodeLoop(t *testing.T) {
	payload := make([]byte, 64)
	binary.BigEndian.PutUint32(payload[0:], math.Float32bits(8))
	binary.BigEndian.PutUint32(payload[8:], math.Float32bits(120))
	binary.BigEndian.PutUint32(payload[12:], 4)
	payload[48] = 7

	info := DecodeLoop(payload)
	require.Equal(t, 64, info.Length)
	require.Equal(t, float32(8), info.Beats)
	require.Equal(t, byte(7), info.KeySignature)
	require.Len(t, info.Candidates, 2)
	require.Equal(t, 8, info.Candidates[0].Offset)
	require.True(t, info.Candidates[0].Tempo)
	require.Equal(t, 12, info.Candidates[1].Offset)
	require.True(t, info.Candidates[1].Bars)
}
