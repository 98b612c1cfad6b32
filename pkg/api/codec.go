// Package api defines the request and response messages of the ledger RPC
// services and the JSON codec they are exchanged with.
package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is the Connect codec name; it selects the application/json
// content type.
const CodecName = "json"

// JSONCodec marshals plain Go message structs with encoding/json. It
// replaces Connect's default protojson codec under the same name.
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	// Empty bodies decode to the zero message.
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
