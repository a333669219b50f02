package smf

import (
	"fmt"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
)

const (
	StatusMeta        byte = 0xFF
	StatusSysEx       byte = 0xF0
	StatusSysExEscape byte = 0xF7

	MetaText       byte = 0x01
	MetaEndOfTrack byte = 0x2F
)

// Message is the payload of an Event. It is implemented only by Meta, SysEx
// and Channel; consumers type-switch over those three.
type Message interface {
	appendTo(dst []byte) ([]byte, error)
	String() string
}

// Meta is a 0xFF meta event.
type Meta struct {
	Type    byte
	Payload []byte
}

// SysEx is a 0xF0 or 0xF7 event. Payload is stored exactly as found after
// the length, including any trailing 0xF7.
type SysEx struct {
	Status  byte
	Payload []byte
}

// Channel is a channel voice or mode message. Data holds one or two bytes
// depending on the status nibble.
type Channel struct {
	Status byte
	Data   []byte
}

// Event is a message positioned at an absolute tick.
type Event struct {
	Tick    uint64
	Message Message
}

// DataLen returns the number of data bytes that follow a channel status
// byte, or 0 if status is not a channel status.
func DataLen(status byte) int {
	switch status >> 4 {
	case 0x8, 0x9, 0xA, 0xB, 0xE:
		return 2
	case 0xC, 0xD:
		return 1
	}
	return 0
}

func (m Meta) appendTo(dst []byte) ([]byte, error) {
	dst = append(dst, StatusMeta, m.Type)
	dst = AppendVLQ(dst, uint64(len(m.Payload)))
	return append(dst, m.Payload...), nil
}

func (m Meta) String() string {
	if m.Type >= 0x01 && m.Type <= 0x0F {
		return fmt.Sprintf("Meta 0x%02X %q", m.Type, m.Payload)
	}
	return fmt.Sprintf("Meta 0x%02X % X", m.Type, m.Payload)
}

func (s SysEx) appendTo(dst []byte) ([]byte, error) {
	if s.Status != StatusSysEx && s.Status != StatusSysExEscape {
		return dst, errors.Wrapf(ErrMalformedEvent, "sysex status 0x%02X", s.Status)
	}
	dst = append(dst, s.Status)
	dst = AppendVLQ(dst, uint64(len(s.Payload)))
	return append(dst, s.Payload...), nil
}

func (s SysEx) String() string {
	return fmt.Sprintf("SysEx 0x%02X % X", s.Status, s.Payload)
}

// appendTo always writes the status byte; output never uses running status.
func (c Channel) appendTo(dst []byte) ([]byte, error) {
	if err := c.validate(); err != nil {
		return dst, err
	}
	dst = append(dst, c.Status)
	return append(dst, c.Data...), nil
}

func (c Channel) validate() error {
	n := DataLen(c.Status)
	if n == 0 || len(c.Data) != n {
		return errors.Wrapf(ErrMalformedEvent, "status 0x%02X with %d data bytes", c.Status, len(c.Data))
	}
	for _, d := range c.Data {
		if d&0x80 != 0 {
			return errors.Wrapf(ErrMalformedEvent, "data byte 0x%02X has its high bit set", d)
		}
	}
	return nil
}

// Command is the high nibble of the status byte.
func (c Channel) Command() byte { return c.Status >> 4 }

// MIDIChannel is the zero-based channel number.
func (c Channel) MIDIChannel() uint8 { return c.Status & 0x0F }

// Message returns the event as a gomidi message.
func (c Channel) Message() gomidi.Message {
	msg := make(gomidi.Message, 0, 1+len(c.Data))
	msg = append(msg, c.Status)
	return append(msg, c.Data...)
}

func (c Channel) String() string {
	return c.Message().String()
}
