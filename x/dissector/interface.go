package dissector

import "context"

// Dissector is the public entry point for decoding raw radio messages
// through the external ws_dissector process.
type Dissector interface {
	// Decode resolves typeName, frames the payload as an AWW request and
	// returns the dissected text. An unknown typeName returns
	// ErrUnsupportedType without touching the external process.
	Decode(ctx context.Context, typeName string, payload []byte) (string, error)
}
