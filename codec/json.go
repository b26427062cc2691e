package codec

import "encoding/json"

// JSON is the standard-library JSON codec: the most portable choice, with
// no dependency beyond the stdlib. Snapshot metadata is a small
// struct-shaped document, so encoding speed rarely matters; pick JSON when
// portability beats throughput.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the stable codec name stored in snapshot headers ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for newly written snapshots. Existing files are
// self-describing: the header records the codec name and loads select it
// with ByName, so changing the default never breaks old files.
var Default Codec = GoJSON{}
