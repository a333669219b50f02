package smf

import (
	"sort"

	"github.com/pkg/errors"
)

// ParseTrack decodes a track payload into events with absolute ticks, in
// stream order. Channel events may use running status; meta and sysex events
// clear it.
func ParseTrack(payload []byte) ([]Event, error) {
	var (
		events  []Event
		tick    uint64
		running byte
		pos     int
	)
	for pos < len(payload) {
		delta, next, err := DecodeVLQ(payload, pos)
		if err != nil {
			return events, errors.Wrap(err, "delta time")
		}
		tick += delta
		pos = next
		if pos >= len(payload) {
			return events, errors.Wrapf(ErrTruncatedInput, "no event after delta time at offset %d", pos)
		}

		status := payload[pos]
		switch {
		case status == StatusMeta:
			if pos+1 >= len(payload) {
				return events, errors.Wrapf(ErrTruncatedInput, "meta type at offset %d", pos+1)
			}
			metaType := payload[pos+1]
			body, next, err := readLengthPrefixed(payload, pos+2)
			if err != nil {
				return events, errors.Wrapf(err, "meta 0x%02X at offset %d", metaType, pos)
			}
			events = append(events, Event{Tick: tick, Message: Meta{Type: metaType, Payload: body}})
			running = 0
			pos = next

		case status == StatusSysEx || status == StatusSysExEscape:
			body, next, err := readLengthPrefixed(payload, pos+1)
			if err != nil {
				return events, errors.Wrapf(err, "sysex at offset %d", pos)
			}
			events = append(events, Event{Tick: tick, Message: SysEx{Status: status, Payload: body}})
			running = 0
			pos = next

		default:
			at := pos
			if status&0x80 != 0 {
				running = status
				pos++
			} else if running == 0 {
				return events, errors.Wrapf(ErrNoRunningStatus, "data byte 0x%02X at offset %d", status, pos)
			}
			n := DataLen(running)
			if n == 0 {
				return events, errors.Wrapf(ErrUnsupportedStatus, "status 0x%02X at offset %d", running, at)
			}
			if pos+n > len(payload) {
				return events, errors.Wrapf(ErrTruncatedInput, "channel data at offset %d", pos)
			}
			data := make([]byte, n)
			copy(data, payload[pos:pos+n])
			ch := Channel{Status: running, Data: data}
			if err := ch.validate(); err != nil {
				return events, errors.Wrapf(err, "offset %d", at)
			}
			events = append(events, Event{Tick: tick, Message: ch})
			pos += n
		}
	}
	return events, nil
}

func readLengthPrefixed(payload []byte, pos int) ([]byte, int, error) {
	length, pos, err := DecodeVLQ(payload, pos)
	if err != nil {
		return nil, pos, err
	}
	if length > uint64(len(payload)-pos) {
		return nil, pos, errors.Wrapf(ErrTruncatedInput, "%d byte body at offset %d, %d remain", length, pos, len(payload)-pos)
	}
	end := pos + int(length)
	body := make([]byte, length)
	copy(body, payload[pos:end])
	return body, end, nil
}

// EncodeTrack serializes events as a track payload. Events are written in
// ascending tick order, ties keeping their relative order. Every channel
// event carries an explicit status byte: input parsed with running status
// round-trips semantically but not byte-for-byte, while encoder output
// always re-encodes to identical bytes.
func EncodeTrack(events []Event) ([]byte, error) {
	sorted := SortedByTick(events)
	var out []byte
	var prev uint64
	for i, ev := range sorted {
		out = AppendVLQ(out, ev.Tick-prev)
		prev = ev.Tick
		var err error
		switch msg := ev.Message.(type) {
		case Meta, SysEx, Channel:
			out, err = msg.appendTo(out)
		default:
			err = errors.Wrapf(ErrMalformedEvent, "unknown message %T", ev.Message)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "event %d at tick %d", i, ev.Tick)
		}
	}
	return out, nil
}

// SortedByTick returns a stable tick-ordered copy of events.
func SortedByTick(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})
	return sorted
}
