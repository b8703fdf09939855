package codec

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

// YAMLCodec reads and writes the same schema as JSONCodec in YAML
type YAMLCodec struct {
	opts Options
}

// NewYAML creates a YAML codec
func NewYAML(opts Options) *YAMLCodec {
	return &YAMLCodec{opts: opts}
}

func (c *YAMLCodec) Name() string      { return "yaml" }
func (c *YAMLCodec) Extension() string { return ".yaml" }

func (c *YAMLCodec) Marshal(doc *mapping.Document) ([]byte, error) {
	if doc == nil {
		return nil, &EncodeError{Err: errors.New("nil document")}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toWire(doc, c.opts)); err != nil {
		return nil, &EncodeError{Err: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &EncodeError{Err: err}
	}
	return buf.Bytes(), nil
}

func (c *YAMLCodec) Unmarshal(data []byte) (*mapping.Document, error) {
	var w wireDocument
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return fromWire(&w)
}
