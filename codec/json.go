package codec

import "encoding/json"

// JSON is a stdlib-based codec.
// Useful when snapshot bytes must be diffable or inspected by hand.
type JSON struct{}

// Marshal encodes v using encoding/json.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes data using encoding/json.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the stable codec name.
func (JSON) Name() string { return "json" }
