// Package jsontable prints rows loaded from a JSON document as a plain-text
// pseudo-table: an underscore rule before each row, then the row's values
// joined by " | ".
package jsontable

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	jsonparser "recordmap/internal/parser/json"
)

// DefaultRuleWidth is the rule length used when Options.RuleWidth is unset.
const DefaultRuleWidth = 120

// Separator joins cells on a line.
const Separator = " | "

// Options controls rendering.
type Options struct {
	// RuleWidth is the number of underscores in the rule before each row.
	RuleWidth int
	// Header prints the first row's keys before the first rule.
	Header bool
}

// ErrNotObject is returned by Render for a row that is not a JSON object.
var ErrNotObject = errors.New("jsontable: row is not an object")

// Render writes rows to w. Every row must be an object; otherwise nothing is
// written and the error wraps ErrNotObject.
func Render(w io.Writer, rows []jsonparser.Row, opt Options) error {
	for i, r := range rows {
		if !r.IsObject() {
			return fmt.Errorf("%w: row %d is %s", ErrNotObject, i, Cell(r.Value))
		}
	}

	width := opt.RuleWidth
	if width <= 0 {
		width = DefaultRuleWidth
	}
	rule := strings.Repeat("_", width)

	bw := bufio.NewWriter(w)
	if opt.Header && len(rows) > 0 {
		keys := make([]string, len(rows[0].Keys))
		for i, k := range rows[0].Keys {
			keys[i] = norm.NFC.String(k)
		}
		fmt.Fprintln(bw, strings.Join(keys, Separator))
	}
	for _, r := range rows {
		fmt.Fprintln(bw, rule)
		cells := make([]string, len(r.Values))
		for i, v := range r.Values {
			cells[i] = Cell(v)
		}
		fmt.Fprintln(bw, strings.Join(cells, Separator))
	}
	return bw.Flush()
}

// Cell renders one decoded JSON value as NFC-normalized text. Strings print
// bare, numbers as written, null as "null", and arrays or objects as compact
// JSON.
func Cell(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = "null"
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		if x {
			s = "true"
		} else {
			s = "false"
		}
	default:
		b, err := json.Marshal(x)
		if err != nil {
			s = fmt.Sprint(x)
		} else {
			s = string(b)
		}
	}
	return norm.NFC.String(s)
}
