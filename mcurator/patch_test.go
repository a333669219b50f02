package mcurator

import (
	"testing"

	"github.com/Enkerli/MIDIcurator/smf"
	"github.com/stretchr/testify/require"
)

func text(tick uint64, s string) smf.Event {
	return smf.Event{Tick: tick, Message: smf.Meta{Type: smf.MetaText, Payload: []byte(s)}}
}

func noteOn(tick uint64, key byte) smf.Event {
	return smf.Event{Tick: tick, Message: smf.Channel{Status: 0x90, Data: []byte{key, 100}}}
}

var vpOptions = Options{
	Source:        "GRIT",
	Pattern:       "Pop Rock 1",
	Intensity:     "6",
	LeadsheetText: "C6add9",
	Bars:          2,
}

func TestPatch(t *testing.T) {
	events := []smf.Event{
		{Tick: 0, Message: smf.Meta{Type: 0x03, Payload: []byte("loop")}},
		text(0, "plain text"),
		text(0, `MCURATOR:v1 {"type":"file","name":"a.mid"}`),
		noteOn(0, 60),
		text(0, "MCURATOR:v1 not json"),
		{Tick: 960, Message: smf.Meta{Type: smf.MetaEndOfTrack, Payload: []byte{}}},
	}
	before := make([]smf.Event, len(events))
	copy(before, events)

	out, res, err := Patch(events, vpOptions)
	require.NoError(t, err)
	require.True(t, res.FileMetaUpdated)
	require.True(t, res.LeadsheetAdded)
	require.False(t, res.LeadsheetFound)
	require.Zero(t, res.ExtraFileMeta)
	require.Empty(t, res.Warnings)

	require.Len(t, out, len(before)+1)
	for i := range before {
		if i == 2 {
			continue
		}
		require.Equal(t, before[i], out[i], "event %d", i)
	}
	require.Equal(t,
		text(0, `MCURATOR:v1 {"type":"file","name":"a.mid","vpSource":"GRIT","vpPattern":"Pop Rock 1","vpIntensity":"6"}`),
		out[2])
	require.Equal(t,
		text(0, `MCURATOR:v1 {"type":"leadsheet","text":"C6add9","bars":2}`),
		out[len(out)-1])
}

func TestPatchLeavesForeignFileKeysVerbatim(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"null text", `{"type":"file","text":null}`},
		{"null bars", `{"type":"file","bars":null}`},
		{"zero bars", `{"type":"file","bars":0}`},
		{"numeric text", `{"type":"file","text":7}`},
		{"escaped text", `{"type":"file","text":"caf\u00e9","bars":3}`},
		{"float bars", `{"bars":2.0,"type":"file"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			events := []smf.Event{text(0, Prefix+tc.body)}
			out, res, err := Patch(events, vpOptions)
			require.NoError(t, err)
			require.True(t, res.FileMetaUpdated)

			want := tc.body[:len(tc.body)-1] + `,"vpSource":"GRIT","vpPattern":"Pop Rock 1","vpIntensity":"6"}`
			require.Equal(t, text(0, Prefix+want), out[0])
		})
	}
}

func TestPatchKeepsMetaTypeAndTick(t *testing.T) {
	events := []smf.Event{
		{Tick: 7, Message: smf.Meta{Type: smf.MetaText, Payload: []byte(`MCURATOR:v1 {"type":"file"}`)}},
		text(0, `MCURATOR:v1 {"type":"leadsheet","text":"Am","bars":4}`),
	}
	out, res, err := Patch(events, vpOptions)
	require.NoError(t, err)
	require.True(t, res.LeadsheetFound)
	require.False(t, res.LeadsheetAdded)
	require.Len(t, out, 2)
	require.Equal(t, uint64(7), out[0].Tick)
	require.Equal(t, smf.MetaText, out[0].Message.(smf.Meta).Type)
	require.Equal(t, events[1], out[1])
}

func TestPatchMissingFileMeta(t *testing.T) {
	events := []smf.Event{noteOn(0, 60)}
	out, res, err := Patch(events, vpOptions)
	require.NoError(t, err)
	require.False(t, res.FileMetaUpdated)
	require.Equal(t, []string{"no-file-meta-found"}, res.Warnings)
	require.True(t, res.LeadsheetAdded)
	require.Len(t, out, 2)
}

func TestPatchOnlyFirstFileMeta(t *testing.T) {
	second := text(10, `MCURATOR:v1 {"type":"file","n":2}`)
	events := []smf.Event{
		text(0, `MCURATOR:v1 {"type":"file","n":1}`),
		second,
		text(0, `MCURATOR:v1 {"type":"leadsheet","text":"C","bars":1}`),
	}
	out, res, err := Patch(events, vpOptions)
	require.NoError(t, err)
	require.Equal(t, 1, res.ExtraFileMeta)
	require.Equal(t, []string{"multiple-file-meta"}, res.Warnings)
	require.Equal(t, second, out[1])
	require.Contains(t, string(out[0].Message.(smf.Meta).Payload), `"vpSource":"GRIT"`)
}

func TestPatchInvalidLeaveEventsUntouched(t *testing.T) {
	events := []smf.Event{text(0, `MCURATOR:v1 {"type":"file"}`)}
	before := text(0, `MCURATOR:v1 {"type":"file"}`)

	opts := vpOptions
	opts.Bars = 0
	out, _, err := Patch(events, opts)
	require.Error(t, err)
	require.Equal(t, []smf.Event{before}, out)
	require.Equal(t, before, events[0])
}

func TestPatchEncodesIdempotently(t *testing.T) {
	events := []smf.Event{
		text(0, `MCURATOR:v1 {"type":"file"}`),
		noteOn(0, 60),
		{Tick: 480, Message: smf.Channel{Status: 0x80, Data: []byte{60, 0}}},
		{Tick: 480, Message: smf.Meta{Type: smf.MetaEndOfTrack, Payload: []byte{}}},
	}
	out, _, err := Patch(events, vpOptions)
	require.NoError(t, err)
	payload, err := smf.EncodeTrack(out)
	require.NoError(t, err)

	parsed, err := smf.ParseTrack(payload)
	require.NoError(t, err)
	again, res, err := Patch(parsed, vpOptions)
	require.NoError(t, err)
	require.True(t, res.LeadsheetFound)
	payload2, err := smf.EncodeTrack(again)
	require.NoError(t, err)
	require.Equal(t, payload, payload2)
}

func TestFind(t *testing.T) {
	events := []smf.Event{
		noteOn(0, 60),
		text(0, "MCURATOR:v1 {bad"),
		text(5, `MCURATOR:v1 {"type":"leadsheet","text":"C","bars":1}`),
		{Tick: 6, Message: smf.Meta{Type: 0x03, Payload: []byte(`MCURATOR:v1 {"type":"file"}`)}},
	}
	found := Find(events)
	require.Len(t, found, 1)
	require.Equal(t, 2, found[0].Index)
	require.Equal(t, uint64(5), found[0].Tick)
	require.Equal(t, TypeLeadsheet, found[0].Payload.Type)
}
