package sequ

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Enkerli/MIDIcurator/smf"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

var noteNames = [12]string{"C", "C♯", "D", "E♭", "E", "F", "F♯", "G", "A♭", "A", "B♭", "B"}

// PitchName renders a MIDI key with middle C as C4.
func PitchName(p uint8) string {
	return fmt.Sprintf("%s%d", noteNames[p%12], int(p)/12-1)
}

// ChordGroup is a set of onsets that start within the grouping tolerance of
// the group's first onset.
type ChordGroup struct {
	Tick    uint64
	Pitches []uint8
}

func (g ChordGroup) Names() []string {
	pitches := slices.Clone(g.Pitches)
	slices.Sort(pitches)
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = PitchName(p)
	}
	return names
}

// GroupChords groups note onsets within tolerance ticks of a group's first
// onset. Ticks are shifted so the earliest onset is 0.
func GroupChords(notes []smf.Note, tolerance uint64) []ChordGroup {
	if len(notes) == 0 {
		return nil
	}
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b smf.Note) int {
		if a.Onset != b.Onset {
			if a.Onset < b.Onset {
				return -1
			}
			return 1
		}
		return int(a.Pitch) - int(b.Pitch)
	})
	origin := sorted[0].Onset

	var groups []ChordGroup
	for i := 0; i < len(sorted); {
		start := sorted[i].Onset
		g := ChordGroup{Tick: start - origin}
		for ; i < len(sorted) && sorted[i].Onset-start <= tolerance; i++ {
			g.Pitches = append(g.Pitches, sorted[i].Pitch)
		}
		groups = append(groups, g)
	}
	return groups
}

// Match pairs a record with the chord group of the same index.
type Match struct {
	Index  int
	Record Record
	Group  *ChordGroup
	Beat   float64
}

func (m Match) Notes() string {
	if m.Group == nil {
		return "(no group)"
	}
	return strings.Join(m.Group.Names(), " ")
}

// Correlate pairs the i-th record with the i-th chord group. Records past the
// last group get a nil Group and Beat -1.
func Correlate(records []Record, groups []ChordGroup, division gosmf.MetricTicks) []Match {
	matches := make([]Match, len(records))
	for i, r := range records {
		m := Match{Index: i, Record: r, Beat: -1}
		if i < len(groups) {
			m.Group = &groups[i]
			if division > 0 {
				m.Beat = float64(groups[i].Tick) / float64(division.Ticks4th())
			}
		}
		matches[i] = m
	}
	return matches
}
