package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Enkerli/MIDIcurator/config"
	"github.com/Enkerli/MIDIcurator/container"
	"github.com/Enkerli/MIDIcurator/mcurator"
	"github.com/Enkerli/MIDIcurator/sequ"
	"github.com/Enkerli/MIDIcurator/smf"
	"github.com/pkg/errors"
)

// loadEvents reads a standard MIDI file, or the event data embedded in an
// AIFF or CAF container.
func loadEvents(path string) ([]smf.Event, *smf.Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(data) >= 4 && container.ID(data[0:4]) == smf.ChunkHeader {
		f, err := smf.ReadFile(data)
		if err != nil {
			return nil, nil, err
		}
		events, err := f.Events()
		return events, &f.Header, err
	}
	c, err := container.Read(data)
	if err != nil {
		return nil, nil, err
	}
	mid, err := c.MIDI()
	if err != nil {
		return nil, nil, err
	}
	events, div, err := smf.ReadEvents(mid)
	if err != nil {
		return nil, nil, err
	}
	var h *smf.Header
	if div > 0 {
		h = &smf.Header{Division: div}
	}
	return events, h, nil
}

func runDumpMIDI(_ *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: midicurator " + dumpMIDIUsage)
	}
	events, h, err := loadEvents(args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(args[0]))
	if h != nil {
		fmt.Printf("format %d, %d tracks, %d ticks/beat\n", h.Format, h.Tracks, h.Division.Ticks4th())
	} else {
		fmt.Println(dimStyle.Render("bare track payload, no header"))
	}

	t := newTable("tick", "event")
	for _, ev := range events {
		t.Row(strconv.FormatUint(ev.Tick, 10), ev.Message.String())
	}
	fmt.Println(t.String())

	if found := mcurator.Find(events); len(found) > 0 {
		fmt.Println(titleStyle.Render("MCURATOR annotations"))
		a := newTable("tick", "type", "payload")
		for _, f := range found {
			text, err := f.Payload.Encode()
			if err != nil {
				return err
			}
			a.Row(strconv.FormatUint(f.Tick, 10), f.Payload.Type, text)
		}
		fmt.Println(a.String())
	}

	notes := smf.AssembleNotes(events)
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d notes", len(notes))))
	n := newTable("onset", "pitch", "velocity", "duration")
	for _, note := range notes {
		n.Row(
			strconv.FormatUint(note.Onset, 10),
			sequ.PitchName(note.Pitch),
			strconv.Itoa(int(note.Velocity)),
			strconv.FormatUint(note.Duration, 10),
		)
	}
	fmt.Println(n.String())
	return nil
}
