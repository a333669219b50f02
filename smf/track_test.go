package smf

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseTrack(t *testing.T) {
	payload := []byte{
		0x00, 0xFF, 0x03, 0x04, 'l', 'o', 'o', 'p', // track name
		0x00, 0xF0, 0x03, 0x7E, 0x09, 0xF7, // sysex
		0x00, 0xC0, 0x05, // program change
		0x10, 0x90, 0x3C, 0x64, // note on
		0x00, 0x3E, 0x65, // running status note on
		0x83, 0x60, 0x80, 0x3C, 0x40, // note off after 480 ticks
		0x00, 0xE0, 0x00, 0x40, // pitch bend
		0x00, 0xFF, 0x2F, 0x00, // end of track
	}
	events, err := ParseTrack(payload)
	require.NoError(t, err)
	require.Equal(t, []Event{
		{Tick: 0, Message: Meta{Type: 0x03, Payload: []byte("loop")}},
		{Tick: 0, Message: SysEx{Status: 0xF0, Payload: []byte{0x7E, 0x09, 0xF7}}},
		{Tick: 0, Message: Channel{Status: 0xC0, Data: []byte{0x05}}},
		{Tick: 16, Message: Channel{Status: 0x90, Data: []byte{0x3C, 0x64}}},
		{Tick: 16, Message: Channel{Status: 0x90, Data: []byte{0x3E, 0x65}}},
		{Tick: 496, Message: Channel{Status: 0x80, Data: []byte{0x3C, 0x40}}},
		{Tick: 496, Message: Channel{Status: 0xE0, Data: []byte{0x00, 0x40}}},
		{Tick: 496, Message: Meta{Type: MetaEndOfTrack, Payload: []byte{}}},
	}, events)
}

func TestParseTrackErrors(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"data byte first", []byte{0x00, 0x3C, 0x64}, ErrNoRunningStatus},
		{"meta clears running status", []byte{0x00, 0x90, 0x3C, 0x64, 0x00, 0xFF, 0x01, 0x00, 0x00, 0x3C, 0x00}, ErrNoRunningStatus},
		{"sysex clears running status", []byte{0x00, 0x90, 0x3C, 0x64, 0x00, 0xF0, 0x00, 0x00, 0x3C, 0x00}, ErrNoRunningStatus},
		{"delta without event", []byte{0x00, 0x90, 0x3C, 0x64, 0x10}, ErrTruncatedInput},
		{"unterminated delta", []byte{0x81}, ErrTruncatedInput},
		{"short channel data", []byte{0x00, 0x90, 0x3C}, ErrTruncatedInput},
		{"meta body overruns", []byte{0x00, 0xFF, 0x01, 0x05, 'a'}, ErrTruncatedInput},
		{"meta type missing", []byte{0x00, 0xFF}, ErrTruncatedInput},
		{"system common status", []byte{0x00, 0xF2, 0x00, 0x00}, ErrUnsupportedStatus},
		{"status as data", []byte{0x00, 0x90, 0x3C, 0x90}, ErrMalformedEvent},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTrack(tc.payload)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestEncodeTrackExplicitStatus(t *testing.T) {
	payload := []byte{
		0x00, 0x90, 0x3C, 0x64,
		0x00, 0x3E, 0x65,
		0x60, 0x80, 0x3C, 0x40,
		0x00, 0xFF, 0x2F, 0x00,
	}
	events, err := ParseTrack(payload)
	require.NoError(t, err)

	encoded, err := EncodeTrack(events)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x00, 0x90, 0x3C, 0x64,
		0x00, 0x90, 0x3E, 0x65,
		0x60, 0x80, 0x3C, 0x40,
		0x00, 0xFF, 0x2F, 0x00,
	}, encoded)

	reparsed, err := ParseTrack(encoded)
	require.NoError(t, err)
	require.Equal(t, events, reparsed)

	again, err := EncodeTrack(reparsed)
	require.NoError(t, err)
	require.Equal(t, encoded, again)
}

func TestEncodeTrackStableSort(t *testing.T) {
	events := []Event{
		{Tick: 10, Message: Channel{Status: 0x90, Data: []byte{60, 100}}},
		{Tick: 0, Message: Meta{Type: MetaText, Payload: []byte("a")}},
		{Tick: 10, Message: Channel{Status: 0x80, Data: []byte{60, 0}}},
		{Tick: 0, Message: Meta{Type: MetaText, Payload: []byte("b")}},
	}
	encoded, err := EncodeTrack(events)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x00, 0xFF, 0x01, 0x01, 'a',
		0x00, 0xFF, 0x01, 0x01, 'b',
		0x0A, 0x90, 60, 100,
		0x00, 0x80, 60, 0,
	}, encoded)

	// The caller's slice keeps its order.
	require.Equal(t, uint64(10), events[0].Tick)
}

func TestEncodeTrackMalformed(t *testing.T) {
	testCases := []struct {
		name  string
		event Event
	}{
		{"short note on", Event{Message: Channel{Status: 0x90, Data: []byte{60}}}},
		{"long program change", Event{Message: Channel{Status: 0xC0, Data: []byte{1, 2}}}},
		{"non channel status", Event{Message: Channel{Status: 0xF2, Data: []byte{1, 2}}}},
		{"bad sysex status", Event{Message: SysEx{Status: 0xF1}}},
		{"nil message", Event{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := EncodeTrack([]Event{
				{Message: Meta{Type: MetaText, Payload: []byte("ok")}},
				tc.event,
			})
			require.Nil(t, out)
			require.True(t, errors.Is(err, ErrMalformedEvent), "got %v", err)
		})
	}
}

func TestEncodeTrackDeltaFromFirstTick(t *testing.T) {
	encoded, err := EncodeTrack([]Event{
		{Tick: 200, Message: Channel{Status: 0xB0, Data: []byte{64, 127}}},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0x48, 0xB0, 64, 127}, encoded)
}

func TestChannelMessage(t *testing.T) {
	ch := Channel{Status: 0x93, Data: []byte{60, 100}}
	require.Equal(t, byte(0x9), ch.Command())
	require.Equal(t, uint8(3), ch.MIDIChannel())
	var channel, key, velocity uint8
	require.True(t, ch.Message().GetNoteOn(&channel, &key, &velocity))
	require.Equal(t, uint8(3), channel)
	require.Equal(t, uint8(60), key)
	require.Equal(t, uint8(100), velocity)
}
