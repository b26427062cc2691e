package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes with github.com/goccy/go-json, a drop-in encoding/json
// replacement that is considerably faster on the flat structs the snapshot
// metadata consists of. It is the default codec.
type GoJSON struct{}

// Marshal encodes the value to JSON.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns the stable codec name stored in snapshot headers ("go-json").
func (GoJSON) Name() string { return "go-json" }
