// Package mcurator reads and rewrites MCURATOR annotations: text meta
// events whose payload is the prefix "MCURATOR:v1 " followed by a compact
// JSON object with a "type" discriminator.
package mcurator

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const Prefix = "MCURATOR:v1 "

const (
	TypeFile      = "file"
	TypeLeadsheet = "leadsheet"
)

var ErrInvalidPayload = errors.New("invalid MCURATOR payload")

const (
	keyType        = "type"
	keyText        = "text"
	keyBars        = "bars"
	keyVPSource    = "vpSource"
	keyVPPattern   = "vpPattern"
	keyVPIntensity = "vpIntensity"
)

// canonicalKeys is the order used for modeled keys that were not present in
// the decoded object.
var canonicalKeys = []string{keyType, keyText, keyBars, keyVPSource, keyVPPattern, keyVPIntensity}

// Payload is the JSON object of an MCURATOR annotation. Modeled keys are
// exposed as fields; nil pointers mean absent. Every other key is kept as
// raw JSON in its original position.
type Payload struct {
	Type        string
	Text        *string
	Bars        *int
	VPSource    *string
	VPPattern   *string
	VPIntensity *string

	keys []string
	raw  map[string]json.RawMessage
	// orig holds the decoded text of bound modeled keys so unchanged values
	// are written back byte for byte.
	orig map[string]json.RawMessage
}

// NewLeadsheet builds a leadsheet annotation.
func NewLeadsheet(text string, bars int) *Payload {
	return &Payload{Type: TypeLeadsheet, Text: &text, Bars: &bars}
}

// Parse decodes the text of a text meta event. ok is false when the text
// lacks the prefix; err is set when the prefix is present but the JSON is
// not an object.
func Parse(text string) (p *Payload, ok bool, err error) {
	body, ok := strings.CutPrefix(text, Prefix)
	if !ok {
		return nil, false, nil
	}
	p, err = decodeObject([]byte(body))
	if err != nil {
		return nil, true, errors.Wrap(ErrInvalidPayload, err.Error())
	}
	return p, true, nil
}

func decodeObject(body []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("expected object, got %v", tok)
	}
	p := &Payload{raw: make(map[string]json.RawMessage), orig: make(map[string]json.RawMessage)}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "value of %q", key)
		}
		if !seen[key] {
			seen[key] = true
			p.keys = append(p.keys, key)
		}
		p.set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return p, nil
}

// modeled returns the value of a modeled key when its field is set.
func (p *Payload) modeled(key string) (any, bool) {
	switch key {
	case keyType:
		if p.Type != "" {
			return p.Type, true
		}
		_, isRaw := p.raw[key]
		return "", !isRaw && p.hasKey(key)
	case keyBars:
		if p.Bars != nil {
			return *p.Bars, true
		}
	case keyText, keyVPSource, keyVPPattern, keyVPIntensity:
		if v := *p.stringField(key); v != nil {
			return *v, true
		}
	}
	return nil, false
}

func (p *Payload) hasKey(key string) bool {
	for _, k := range p.keys {
		if k == key {
			return true
		}
	}
	return false
}

// set binds a decoded value to its modeled field when it is the expected
// JSON kind: a string for type and the text fields, an integer for bars.
// Anything else, null included, is kept raw and clears the field.
func (p *Payload) set(key string, value json.RawMessage) {
	trimmed := bytes.TrimSpace(value)
	var lead byte
	if len(trimmed) > 0 {
		lead = trimmed[0]
	}
	var str string
	var num int
	switch key {
	case keyType:
		p.Type = ""
		if lead == '"' && json.Unmarshal(trimmed, &str) == nil {
			p.Type = str
			p.bind(key, trimmed)
			return
		}
	case keyText, keyVPSource, keyVPPattern, keyVPIntensity:
		*p.stringField(key) = nil
		if lead == '"' && json.Unmarshal(trimmed, &str) == nil {
			*p.stringField(key) = &str
			p.bind(key, trimmed)
			return
		}
	case keyBars:
		p.Bars = nil
		if (lead == '-' || lead >= '0' && lead <= '9') && json.Unmarshal(trimmed, &num) == nil {
			p.Bars = &num
			p.bind(key, trimmed)
			return
		}
	}
	delete(p.orig, key)
	p.raw[key] = value
}

func (p *Payload) bind(key string, value json.RawMessage) {
	delete(p.raw, key)
	p.orig[key] = value
}

func (p *Payload) stringField(key string) **string {
	switch key {
	case keyText:
		return &p.Text
	case keyVPSource:
		return &p.VPSource
	case keyVPPattern:
		return &p.VPPattern
	case keyVPIntensity:
		return &p.VPIntensity
	}
	panic("mcurator: not a string field: " + key)
}

// Unknown returns the raw JSON of a key that is not modeled by a field.
func (p *Payload) Unknown(key string) (json.RawMessage, bool) {
	v, ok := p.raw[key]
	return v, ok
}

// MarshalJSON writes a compact object. Keys keep their decoded order and
// modeled keys that were added afterwards follow in canonical order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	order := make([]string, 0, len(p.keys)+len(canonicalKeys))
	seen := make(map[string]bool, len(p.keys))
	for _, k := range p.keys {
		order = append(order, k)
		seen[k] = true
	}
	for _, k := range canonicalKeys {
		if _, ok := p.modeled(k); ok && !seen[k] {
			order = append(order, k)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, key := range order {
		value, present, err := p.value(key)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %q", key)
		}
		if !present {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := encodeValue(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Payload) value(key string) ([]byte, bool, error) {
	if v, ok := p.modeled(key); ok {
		if p.unchanged(key, v) {
			return compact(p.orig[key])
		}
		b, err := encodeValue(v)
		return b, true, err
	}
	raw, ok := p.raw[key]
	if !ok {
		return nil, false, nil
	}
	return compact(raw)
}

// unchanged reports whether v still equals the value key was decoded from.
func (p *Payload) unchanged(key string, v any) bool {
	orig, ok := p.orig[key]
	if !ok {
		return false
	}
	switch v := v.(type) {
	case string:
		var s string
		return json.Unmarshal(orig, &s) == nil && s == v
	case int:
		var n int
		return json.Unmarshal(orig, &n) == nil && n == v
	}
	return false
}

func compact(raw json.RawMessage) ([]byte, bool, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Encode returns the full annotation text, prefix included.
func (p *Payload) Encode() (string, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return "", err
	}
	return Prefix + string(b), nil
}
