package smf

import (
	"sort"

	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

// Note is a sounding interval assembled from note-on/note-off pairs.
type Note struct {
	Onset    uint64
	Pitch    uint8
	Velocity uint8
	Duration uint64
}

// End is the tick at which the note stops sounding.
func (n Note) End() uint64 { return n.Onset + n.Duration }

type openNote struct {
	onset    uint64
	velocity uint8
	sounding bool
}

// AssembleNotes pairs note-ons with note-offs by pitch, regardless of MIDI
// channel. A note-on for a pitch that is already sounding closes the earlier
// note at that tick. A note-off with no open note is ignored. Notes still
// open at the end are closed at the last tick seen in the stream. The result
// is ordered by onset.
func AssembleNotes(events []Event) []Note {
	var (
		open  [128]openNote
		notes []Note
		last  uint64
	)
	closeNote := func(pitch uint8, tick uint64) {
		o := &open[pitch]
		notes = append(notes, Note{
			Onset:    o.onset,
			Pitch:    pitch,
			Velocity: o.velocity,
			Duration: tick - o.onset,
		})
		o.sounding = false
	}

	for _, ev := range events {
		if ev.Tick > last {
			last = ev.Tick
		}
		ch, ok := ev.Message.(Channel)
		if !ok || ch.validate() != nil {
			continue
		}
		var channel, key, velocity uint8
		msg := ch.Message()
		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			if open[key].sounding {
				closeNote(key, ev.Tick)
			}
			open[key] = openNote{onset: ev.Tick, velocity: velocity, sounding: true}
		case msg.GetNoteEnd(&channel, &key):
			if open[key].sounding {
				closeNote(key, ev.Tick)
			}
		}
	}

	for pitch := range open {
		if open[pitch].sounding {
			closeNote(uint8(pitch), last)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Onset < notes[j].Onset
	})
	return notes
}

// LastNoteOff returns the tick of the latest note-off (or note-on with
// velocity 0) in events, or 0 when there is none.
func LastNoteOff(events []Event) uint64 {
	var last uint64
	for _, ev := range events {
		ch, ok := ev.Message.(Channel)
		if !ok || ch.validate() != nil {
			continue
		}
		var channel, key uint8
		if ch.Message().GetNoteEnd(&channel, &key) && ev.Tick > last {
			last = ev.Tick
		}
	}
	return last
}

// LastNoteEnd returns the latest end tick across notes.
func LastNoteEnd(notes []Note) uint64 {
	var last uint64
	for _, n := range notes {
		if n.End() > last {
			last = n.End()
		}
	}
	return last
}

// BarCount returns ceil(tick / ticksPerBar) with a minimum of one bar.
func BarCount(tick uint64, division gosmf.MetricTicks, beatsPerBar int) int {
	ticksPerBar := uint64(division.Ticks4th()) * uint64(beatsPerBar)
	if ticksPerBar == 0 {
		return 1
	}
	return max(1, int((tick+ticksPerBar-1)/ticksPerBar))
}
