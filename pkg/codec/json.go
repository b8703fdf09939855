package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

// JSONCodec is the primary on-disk format
type JSONCodec struct {
	opts Options
}

// NewJSON creates a JSON codec
func NewJSON(opts Options) *JSONCodec {
	return &JSONCodec{opts: opts}
}

func (c *JSONCodec) Name() string      { return "json" }
func (c *JSONCodec) Extension() string { return ".json" }

// Marshal writes two-space indented JSON with sorted mapping names. Non-ASCII
// text and angle brackets in conditions are written as-is.
func (c *JSONCodec) Marshal(doc *mapping.Document) ([]byte, error) {
	if doc == nil {
		return nil, &EncodeError{Err: errors.New("nil document")}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(doc, c.opts)); err != nil {
		return nil, &EncodeError{Err: err}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a JSON document; numbers are kept exact so integer
// order_group values survive
func (c *JSONCodec) Unmarshal(data []byte) (*mapping.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var w wireDocument
	if err := dec.Decode(&w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &DecodeError{Field: typeErr.Field, Err: err}
		}
		return nil, &DecodeError{Err: err}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after document")
		}
		return nil, &DecodeError{Err: err}
	}
	return fromWire(&w)
}
