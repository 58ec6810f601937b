package model

import (
	"bytes"
	"encoding/json"
)

// Encode serialises the whole document to its on-disk JSON form
func Encode(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(Export(d)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses an on-disk JSON document. Syntax and type errors are
// reported as a ValidationError.
func Decode(data []byte) (*Document, error) {
	var in DocumentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	return Import(in), nil
}
