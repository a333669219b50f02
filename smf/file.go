package smf

import (
	"encoding/binary"

	"github.com/Enkerli/MIDIcurator/container"
	"github.com/pkg/errors"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

var (
	ChunkHeader = container.NewID("MThd")
	ChunkTrack  = container.NewID("MTrk")
)

// Header is the decoded MThd chunk.
type Header struct {
	Format   uint16
	Tracks   uint16
	Division gosmf.MetricTicks
}

// File is a standard MIDI file held in memory. The header chunk, every
// chunk after it and any trailing bytes too short to form a chunk are kept
// verbatim; only tracks replaced with SetTrack are re-encoded by Bytes.
type File struct {
	Header Header

	header []byte
	chunks []container.Chunk
	tail   []byte
}

// ReadFile decodes the header of a standard MIDI file and splits the rest
// into chunks. Track payloads are parsed lazily by Track.
func ReadFile(data []byte) (*File, error) {
	if len(data) < 8 || container.ID(data[0:4]) != ChunkHeader {
		return nil, errors.Wrap(ErrMalformedHeader, "missing MThd")
	}
	hlen := binary.BigEndian.Uint32(data[4:8])
	if hlen < 6 {
		return nil, errors.Wrapf(ErrMalformedHeader, "MThd length %d", hlen)
	}
	if uint64(hlen) > uint64(len(data)-8) {
		return nil, errors.Wrapf(ErrTruncatedInput, "MThd declares %d bytes, %d remain", hlen, len(data)-8)
	}
	division := binary.BigEndian.Uint16(data[12:14])
	if division&0x8000 != 0 {
		return nil, errors.Wrapf(ErrSMPTETiming, "division 0x%04X", division)
	}
	f := &File{
		Header: Header{
			Format:   binary.BigEndian.Uint16(data[8:10]),
			Tracks:   binary.BigEndian.Uint16(data[10:12]),
			Division: gosmf.MetricTicks(division),
		},
		header: data[:8+hlen],
	}

	chunks, err := container.ReadChunks(data, 8+int(hlen), false)
	if err != nil {
		return nil, errors.Wrap(ErrTruncatedInput, err.Error())
	}
	f.chunks = chunks
	end := 8 + int(hlen)
	if n := len(chunks); n > 0 {
		end = chunks[n-1].Offset + 8 + len(chunks[n-1].Payload)
	}
	f.tail = data[end:]
	if f.trackIndex(0) < 0 {
		return nil, errors.Wrap(ErrMalformedHeader, "no MTrk chunk")
	}
	return f, nil
}

// NumTracks returns the number of MTrk chunks present.
func (f *File) NumTracks() int {
	n := 0
	for _, c := range f.chunks {
		if c.ID == ChunkTrack {
			n++
		}
	}
	return n
}

func (f *File) trackIndex(i int) int {
	for ci, c := range f.chunks {
		if c.ID != ChunkTrack {
			continue
		}
		if i == 0 {
			return ci
		}
		i--
	}
	return -1
}

// Track parses the i-th MTrk chunk.
func (f *File) Track(i int) ([]Event, error) {
	ci := f.trackIndex(i)
	if ci < 0 {
		return nil, errors.Errorf("track %d out of range (%d tracks)", i, f.NumTracks())
	}
	events, err := ParseTrack(f.chunks[ci].Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "track %d", i)
	}
	return events, nil
}

// SetTrack encodes events and replaces the payload of the i-th MTrk chunk.
// On error the file is left unchanged.
func (f *File) SetTrack(i int, events []Event) error {
	ci := f.trackIndex(i)
	if ci < 0 {
		return errors.Errorf("track %d out of range (%d tracks)", i, f.NumTracks())
	}
	payload, err := EncodeTrack(events)
	if err != nil {
		return errors.Wrapf(err, "track %d", i)
	}
	f.chunks[ci].Payload = payload
	return nil
}

// Events parses every track and merges them in tick order. Intended for
// analysis; merged events are not written back.
func (f *File) Events() ([]Event, error) {
	var all []Event
	for i := 0; i < f.NumTracks(); i++ {
		events, err := f.Track(i)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return SortedByTick(all), nil
}

// Bytes reassembles the file.
func (f *File) Bytes() []byte {
	size := len(f.header) + len(f.tail)
	for _, c := range f.chunks {
		size += 8 + len(c.Payload)
	}
	out := make([]byte, 0, size)
	out = append(out, f.header...)
	for _, c := range f.chunks {
		out = append(out, c.ID[:]...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(c.Payload)))
		out = append(out, c.Payload...)
	}
	return append(out, f.tail...)
}

// ReadEvents decodes embedded event data: a full MIDI file when it begins
// with MThd, otherwise a bare track payload. The division is zero for a
// bare payload.
func ReadEvents(data []byte) ([]Event, gosmf.MetricTicks, error) {
	if len(data) >= 4 && container.ID(data[0:4]) == ChunkHeader {
		f, err := ReadFile(data)
		if err != nil {
			return nil, 0, err
		}
		events, err := f.Events()
		return events, f.Header.Division, err
	}
	events, err := ParseTrack(data)
	return events, 0, err
}
