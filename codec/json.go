package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Reports are plain structs of numbers and strings, so both JSON codecs
// produce the same bytes; JSON exists for callers who want no extra
// dependency in the encode path.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is named.
var Default Codec = GoJSON{}
