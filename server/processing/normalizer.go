package processing

// Normalize wraps raw provider text into the canonical envelope: a
// one-element content sequence holding the text verbatim. No parsing, no
// trimming. Normalizing the same text always yields a structurally
// identical envelope.
func Normalize(raw string) *Response {
	return &Response{
		Content: []ContentBlock{
			{Text: raw},
		},
	}
}
