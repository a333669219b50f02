package mcurator

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1},
    "vpSource": {"type": "string"},
    "vpPattern": {"type": "string"},
    "vpIntensity": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "leadsheet"}}},
      "then": {
        "required": ["text", "bars"],
        "properties": {
          "text": {"type": "string"},
          "bars": {"type": "integer", "minimum": 1}
        }
      }
    }
  ]
}`

var schema = mustSchema(payloadSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks an encoded payload object against the annotation schema.
func Validate(object []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(object))
	if err != nil {
		return errors.Wrap(ErrInvalidPayload, err.Error())
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.Wrap(ErrInvalidPayload, strings.Join(msgs, "; "))
}
