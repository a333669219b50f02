package mcurator

import (
	"unicode/utf8"

	"github.com/Enkerli/MIDIcurator/smf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options holds the values written by Patch.
type Options struct {
	Source    string
	Pattern   string
	Intensity string

	// LeadsheetText and Bars fill a leadsheet annotation when the track has
	// none.
	LeadsheetText string
	Bars          int
}

// Result reports what Patch changed.
type Result struct {
	FileMetaUpdated bool
	// ExtraFileMeta counts file annotations after the first; they are left
	// untouched.
	ExtraFileMeta  int
	LeadsheetFound bool
	LeadsheetAdded bool
	Warnings       []string
}

// Annotation is a decoded MCURATOR text event.
type Annotation struct {
	Index   int
	Tick    uint64
	Payload *Payload
}

// Find returns every decodable MCURATOR annotation in events. Text events
// that carry the prefix but not a JSON object are skipped.
func Find(events []smf.Event) []Annotation {
	var found []Annotation
	for i, ev := range events {
		meta, ok := ev.Message.(smf.Meta)
		if !ok || meta.Type != smf.MetaText || !utf8.Valid(meta.Payload) {
			continue
		}
		p, ok, err := Parse(string(meta.Payload))
		if !ok {
			continue
		}
		if err != nil {
			logrus.Debugf("Skipping text event %d at tick %d: %v", i, ev.Tick, err)
			continue
		}
		found = append(found, Annotation{Index: i, Tick: ev.Tick, Payload: p})
	}
	return found
}

// Patch writes the VP fields into the first file annotation and appends a
// leadsheet annotation at tick 0 when none exists. The file annotation keeps
// its tick, meta type and position; no other event is modified. A missing
// file annotation is reported as a warning. Both payloads are validated
// before events is touched, so on error events is unchanged.
func Patch(events []smf.Event, opts Options) ([]smf.Event, Result, error) {
	var res Result
	fileIdx := -1
	var filePayload []byte

	for _, a := range Find(events) {
		switch a.Payload.Type {
		case TypeFile:
			if fileIdx >= 0 {
				res.ExtraFileMeta++
				continue
			}
			fileIdx = a.Index
			p := a.Payload
			p.VPSource = &opts.Source
			p.VPPattern = &opts.Pattern
			p.VPIntensity = &opts.Intensity
			text, err := encode(p)
			if err != nil {
				return events, res, errors.Wrapf(err, "file annotation at tick %d", a.Tick)
			}
			filePayload = text
		case TypeLeadsheet:
			res.LeadsheetFound = true
		}
	}

	var leadsheet []byte
	if !res.LeadsheetFound {
		text, err := encode(NewLeadsheet(opts.LeadsheetText, opts.Bars))
		if err != nil {
			return events, res, errors.Wrap(err, "leadsheet annotation")
		}
		leadsheet = text
	}

	if fileIdx >= 0 {
		meta := events[fileIdx].Message.(smf.Meta)
		events[fileIdx].Message = smf.Meta{Type: meta.Type, Payload: filePayload}
		res.FileMetaUpdated = true
	} else {
		res.Warnings = append(res.Warnings, "no-file-meta-found")
	}
	if res.ExtraFileMeta > 0 {
		res.Warnings = append(res.Warnings, "multiple-file-meta")
	}
	if leadsheet != nil {
		events = append(events, smf.Event{Tick: 0, Message: smf.Meta{Type: smf.MetaText, Payload: leadsheet}})
		res.LeadsheetAdded = true
	}
	return events, res, nil
}

func encode(p *Payload) ([]byte, error) {
	object, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if err := Validate(object); err != nil {
		return nil, err
	}
	return append([]byte(Prefix), object...), nil
}
