// Package processing defines the canonical response envelope the gateway
// returns to clients and the normalization step that produces it.
//
// Whatever text the provider produces is wrapped unmodified into
// {"content": [{"text": "<raw provider text>"}]}. By convention the text is a
// JSON-encoded recipe object, but the gateway treats it as opaque; parsing
// the inner structure is the consuming client's responsibility.
package processing

// ContentBlock holds one piece of provider output.
type ContentBlock struct {
	Text string `json:"text"`
}

// Response is the canonical envelope returned for every successful
// generation, identical across provider variants.
type Response struct {
	Content []ContentBlock `json:"content"`
}
