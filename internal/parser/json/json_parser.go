// Package json loads a JSON document holding a list of objects into ordered
// rows.
//
// Accepted shapes:
//
//   - a top-level array: [{"id":1}, {"id":2}], with one row per element
//   - a single top-level object, treated as one row: {"id":1}
//
// Object elements keep their key order. Other array elements (numbers,
// strings, nested arrays) become value rows, see ValueRow. Numbers are kept
// as json.Number so callers see them exactly as written.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrFileNotFound is returned when the input file does not exist.
	ErrFileNotFound = errors.New("json parser: file not found")
	// ErrSyntax is returned for input that is not valid JSON.
	ErrSyntax = errors.New("json parser: invalid JSON")
	// ErrShape is returned for a valid top-level value that is neither an
	// object nor an array.
	ErrShape = errors.New("json parser: unsupported document shape")
)

// Decoder reads rows one at a time from a JSON document.
type Decoder struct {
	dec     *json.Decoder
	started bool
	array   bool
	done    bool
	index   int
}

// NewDecoder constructs a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	d := json.NewDecoder(r)
	// UseNumber so callers can decide how to map numeric values.
	d.UseNumber()
	return &Decoder{dec: d}
}

// Next returns the next row. It returns io.EOF after the last row, and an
// error wrapping ErrSyntax or ErrShape when the document is malformed.
func (d *Decoder) Next() (Row, error) {
	if d.done {
		return Row{}, io.EOF
	}
	if !d.started {
		d.started = true
		if err := d.start(); err != nil {
			d.done = true
			return Row{}, err
		}
		if !d.array {
			// Single object document: the opening brace is consumed.
			row, err := objectBody(d.dec)
			if err == nil {
				err = d.end()
			}
			d.done = true
			return row, err
		}
	}

	if !d.dec.More() {
		d.done = true
		if _, err := d.dec.Token(); err != nil { // closing ]
			return Row{}, syntaxErr(err)
		}
		if err := d.end(); err != nil {
			return Row{}, err
		}
		return Row{}, io.EOF
	}

	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		d.done = true
		return Row{}, syntaxErr(err)
	}
	row, err := element(raw)
	if err != nil {
		d.done = true
		return Row{}, fmt.Errorf("element %d: %w", d.index, err)
	}
	d.index++
	return row, nil
}

// element decodes one array element. Objects keep their key order.
func element(raw json.RawMessage) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if b := bytes.TrimSpace(raw); len(b) == 0 || b[0] != '{' {
		var v any
		if err := dec.Decode(&v); err != nil {
			return Row{}, syntaxErr(err)
		}
		return ValueRow(v), nil
	}
	if _, err := dec.Token(); err != nil { // opening {
		return Row{}, syntaxErr(err)
	}
	return objectBody(dec)
}

// start reads the opening token of the document.
func (d *Decoder) start() error {
	tok, err := d.dec.Token()
	if err != nil {
		return syntaxErr(err)
	}
	switch tok {
	case json.Delim('['):
		d.array = true
		return nil
	case json.Delim('{'):
		return nil
	default:
		return fmt.Errorf("%w: top-level value is %T, want an array or object", ErrShape, tok)
	}
}

// objectBody reads key/value pairs up to and including the closing brace.
func objectBody(dec *json.Decoder) (Row, error) {
	var row Row
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, syntaxErr(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Row{}, fmt.Errorf("%w: object key %v is not a string", ErrSyntax, tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return Row{}, syntaxErr(err)
		}
		row.set(key, v)
	}
	if _, err := dec.Token(); err != nil { // closing }
		return Row{}, syntaxErr(err)
	}
	return row, nil
}

// end verifies nothing but whitespace follows the document.
func (d *Decoder) end() error {
	if _, err := d.dec.Token(); err != io.EOF {
		if err != nil {
			return syntaxErr(err)
		}
		return fmt.Errorf("%w: trailing data after top-level value", ErrSyntax)
	}
	return nil
}

// syntaxErr classifies a decoder error as ErrSyntax. An early EOF counts as
// truncated input.
func syntaxErr(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrSyntax, err)
}

// DecodeAll reads every row from r.
func DecodeAll(r io.Reader) ([]Row, error) {
	d := NewDecoder(r)
	var out []Row
	for {
		row, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}
