package graphstream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ContentShape discriminates the wire shape of chunk content.
type ContentShape string

const (
	// ContentShapeEmpty means the chunk carried no content (null or absent)
	ContentShapeEmpty ContentShape = ""

	// ContentShapePlain means the content arrived as a plain JSON string
	ContentShapePlain ContentShape = "plain"

	// ContentShapeParts means the content arrived as an ordered array of
	// content-part objects (the Anthropic-style provider shape)
	ContentShapeParts ContentShape = "parts"
)

// ContentPart is one element of parted chunk content.
type ContentPart struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// ChunkContent is the incremental model output of one chunk, normalized
// into a tagged variant when the event line is decoded. Exactly one of
// Text or Parts is meaningful, selected by Shape. Content of any other
// wire shape decodes to the empty variant rather than failing the line.
type ChunkContent struct {
	Shape ContentShape
	Text  string
	Parts []ContentPart
}

// Token returns the token to surface for this content, if any.
//
// Plain content yields its (untrimmed) text only when the trimmed text is
// non-empty; whitespace-only chunks produce no token so the UI is never
// notified for spurious updates. Parted content only ever inspects the
// first part, yielding its text when non-empty.
func (c ChunkContent) Token() (string, bool) {
	switch c.Shape {
	case ContentShapePlain:
		if strings.TrimSpace(c.Text) == "" {
			return "", false
		}
		return c.Text, true
	case ContentShapeParts:
		if len(c.Parts) == 0 || c.Parts[0].Text == "" {
			return "", false
		}
		return c.Parts[0].Text, true
	default:
		return "", false
	}
}

// IsEmpty returns true if the chunk carried no usable content
func (c ChunkContent) IsEmpty() bool {
	return c.Shape == ContentShapeEmpty
}

// UnmarshalJSON decides the content shape from the wire form.
func (c *ChunkContent) UnmarshalJSON(data []byte) error {
	*c = ChunkContent{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		c.Shape = ContentShapePlain
		c.Text = s
	case '[':
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		c.Shape = ContentShapeParts
		c.Parts = parts
	default:
		// Numbers, objects and booleans have no token to offer.
		// Treat them as empty content rather than rejecting the line.
	}
	return nil
}

// MarshalJSON writes the content back in its wire shape.
func (c ChunkContent) MarshalJSON() ([]byte, error) {
	switch c.Shape {
	case ContentShapePlain:
		return json.Marshal(c.Text)
	case ContentShapeParts:
		return json.Marshal(c.Parts)
	default:
		return []byte("null"), nil
	}
}
