// Package tomledit edits TOML documents in place, keeping every byte it was
// not asked to change.
package tomledit

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ErrSyntax is returned for text the scanner cannot follow.
var ErrSyntax = errors.New("invalid TOML")

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// Table is a [header] section, or the implicit root table.
type Table struct {
	Name []string
	// Array is set for [[header]] sections.
	Array bool
	// Header covers the header line; empty for the root table.
	Header Span
	// LastEnd is the offset just past the last line that belongs to the
	// table (its header or its last key/value line).
	LastEnd int
}

// KeyValue is one `key = value` line.
type KeyValue struct {
	Table []string
	Key   []string
	// Line runs from the key to just past the line's newline.
	Line  Span
	Value Span
	// Array is set when the value is an array.
	Array *Array

	inArrayTable bool
}

// Path returns the full dotted path of the key, table included.
func (kv *KeyValue) Path() []string {
	return append(slices.Clone(kv.Table), kv.Key...)
}

// Array is the layout of an array value.
type Array struct {
	Open  int
	Close int
	Elems []Elem
}

// Elem is one array element.
type Elem struct {
	Span Span
	// Comma is the offset of the comma following the element, or -1.
	Comma int
}

// Document is a parsed TOML text with byte positions for tables, keys and
// array elements.
type Document struct {
	src    []byte
	tables []*Table
	values []*KeyValue
}

// Parse validates src with go-toml and records the layout of its tables,
// key/value pairs and arrays.
func Parse(src []byte) (*Document, error) {
	var v map[string]any
	if err := toml.Unmarshal(src, &v); err != nil {
		return nil, err
	}

	d := &Document{src: src}
	s := &scanner{src: src}
	table := &Table{}
	d.tables = append(d.tables, table)

	for {
		s.skipBlank()
		if s.eof() {
			break
		}

		if s.peek() == '[' {
			t, err := s.header()
			if err != nil {
				return nil, err
			}
			table = t
			d.tables = append(d.tables, table)
			continue
		}

		kv, err := s.keyValue()
		if err != nil {
			return nil, err
		}
		kv.Table = table.Name
		kv.inArrayTable = table.Array
		table.LastEnd = kv.Line.End
		d.values = append(d.values, kv)
	}
	return d, nil
}

// Bytes returns the document text.
func (d *Document) Bytes() []byte {
	return d.src
}

// String returns the document text.
func (d *Document) String() string {
	return string(d.src)
}

// Lookup returns the key/value whose full path is path, or nil. Keys inside
// arrays of tables are never found.
func (d *Document) Lookup(path ...string) *KeyValue {
	for _, kv := range d.values {
		if !kv.inArrayTable && slices.Equal(kv.Path(), path) {
			return kv
		}
	}
	return nil
}

// Table returns the explicit [name] table, or the root table for an empty
// name. Arrays of tables are not returned.
func (d *Document) Table(name ...string) *Table {
	for _, t := range d.tables {
		if !t.Array && slices.Equal(t.Name, name) && (len(name) == 0 || t.Header != Span{}) {
			return t
		}
	}
	return nil
}

// Raw returns the text at span.
func (d *Document) Raw(span Span) string {
	return string(d.src[span.Start:span.End])
}

// StringValue decodes a TOML string value. ok is false for any other type.
func StringValue(raw string) (s string, ok bool) {
	var v struct {
		V any `toml:"v"`
	}
	if err := toml.Unmarshal([]byte("v = "+raw), &v); err != nil {
		return "", false
	}
	s, ok = v.V.(string)
	return s, ok
}

type scanner struct {
	src []byte
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) errorf(format string, args ...any) error {
	line := bytes.Count(s.src[:min(s.pos, len(s.src))], []byte("\n")) + 1
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
}

// skipSpace skips spaces and tabs.
func (s *scanner) skipSpace() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t') {
		s.pos++
	}
}

// skipBlank skips whitespace, newlines and comments.
func (s *scanner) skipBlank() {
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.pos++
		case '#':
			s.skipComment()
		default:
			return
		}
	}
}

func (s *scanner) skipComment() {
	if i := bytes.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i
	} else {
		s.pos = len(s.src)
	}
}

// endLine consumes trailing space, an optional comment and the newline.
func (s *scanner) endLine() error {
	s.skipSpace()
	if s.peek() == '#' {
		s.skipComment()
	}
	if s.peek() == '\r' {
		s.pos++
	}
	if s.eof() {
		return nil
	}
	if s.peek() != '\n' {
		return s.errorf("unexpected %q at end of line", s.peek())
	}
	s.pos++
	return nil
}

func (s *scanner) header() (*Table, error) {
	t := &Table{Header: Span{Start: s.pos}}
	s.pos++
	if s.peek() == '[' {
		t.Array = true
		s.pos++
	}

	name, err := s.key(']')
	if err != nil {
		return nil, err
	}
	t.Name = name

	closing := "]"
	if t.Array {
		closing = "]]"
	}
	if !bytes.HasPrefix(s.src[s.pos:], []byte(closing)) {
		return nil, s.errorf("unterminated table header")
	}
	s.pos += len(closing)
	if err := s.endLine(); err != nil {
		return nil, err
	}
	t.Header.End = s.pos
	t.LastEnd = s.pos
	return t, nil
}

func (s *scanner) keyValue() (*KeyValue, error) {
	kv := &KeyValue{Line: Span{Start: s.pos}}

	key, err := s.key('=')
	if err != nil {
		return nil, err
	}
	kv.Key = key
	if s.peek() != '=' {
		return nil, s.errorf("expected '=' after key")
	}
	s.pos++
	s.skipSpace()

	kv.Value.Start = s.pos
	arr, err := s.value()
	if err != nil {
		return nil, err
	}
	kv.Value.End = s.pos
	kv.Array = arr

	if err := s.endLine(); err != nil {
		return nil, err
	}
	kv.Line.End = s.pos
	return kv, nil
}

// key reads a dotted key up to stop.
func (s *scanner) key(stop byte) ([]string, error) {
	var parts []string
	for {
		s.skipSpace()
		start := s.pos
		switch s.peek() {
		case '"', '\'':
			if err := s.str(); err != nil {
				return nil, err
			}
			part, ok := StringValue(string(s.src[start:s.pos]))
			if !ok {
				return nil, s.errorf("invalid quoted key")
			}
			parts = append(parts, part)
		default:
			for !s.eof() && isBare(s.peek()) {
				s.pos++
			}
			if s.pos == start {
				return nil, s.errorf("expected a key")
			}
			parts = append(parts, string(s.src[start:s.pos]))
		}
		s.skipSpace()
		switch s.peek() {
		case '.':
			s.pos++
		case stop:
			return parts, nil
		default:
			return nil, s.errorf("unexpected %q in key", s.peek())
		}
	}
}

// value consumes one value and returns its array layout when it is an array.
func (s *scanner) value() (*Array, error) {
	switch s.peek() {
	case '"', '\'':
		return nil, s.str()
	case '[':
		return s.array()
	case '{':
		return nil, s.inlineTable()
	}

	start := s.pos
	for !s.eof() {
		switch s.peek() {
		case ',', ']', '}', '#', '\r', '\n':
			s.trimBack(start)
			return nil, nil
		}
		s.pos++
	}
	s.trimBack(start)
	return nil, nil
}

func (s *scanner) trimBack(start int) {
	for s.pos > start && (s.src[s.pos-1] == ' ' || s.src[s.pos-1] == '\t') {
		s.pos--
	}
}

func (s *scanner) array() (*Array, error) {
	arr := &Array{Open: s.pos}
	s.pos++
	for {
		s.skipBlank()
		if s.eof() {
			return nil, s.errorf("unterminated array")
		}
		if s.peek() == ']' {
			arr.Close = s.pos
			s.pos++
			return arr, nil
		}

		elem := Elem{Span: Span{Start: s.pos}, Comma: -1}
		if _, err := s.value(); err != nil {
			return nil, err
		}
		elem.Span.End = s.pos

		s.skipBlank()
		if s.peek() == ',' {
			elem.Comma = s.pos
			s.pos++
		} else if s.peek() != ']' {
			return nil, s.errorf("expected ',' or ']' in array")
		}
		arr.Elems = append(arr.Elems, elem)
	}
}

func (s *scanner) inlineTable() error {
	s.pos++
	for {
		s.skipSpace()
		if s.peek() == '}' {
			s.pos++
			return nil
		}
		if _, err := s.key('='); err != nil {
			return err
		}
		s.pos++
		s.skipSpace()
		if _, err := s.value(); err != nil {
			return err
		}
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.pos++
		case '}':
		default:
			return s.errorf("expected ',' or '}' in inline table")
		}
	}
}

// str consumes a basic, literal or multi-line string.
func (s *scanner) str() error {
	q := s.peek()
	triple := bytes.Repeat([]byte{q}, 3)

	if bytes.HasPrefix(s.src[s.pos:], triple) {
		s.pos += 3
		for !s.eof() {
			if q == '"' && s.peek() == '\\' {
				s.pos += 2
				continue
			}
			if bytes.HasPrefix(s.src[s.pos:], triple) {
				s.pos += 3
				// Up to two quotes may directly precede the delimiter.
				for i := 0; i < 2 && s.peek() == q; i++ {
					s.pos++
				}
				return nil
			}
			s.pos++
		}
		return s.errorf("unterminated multi-line string")
	}

	s.pos++
	for !s.eof() {
		c := s.peek()
		switch {
		case q == '"' && c == '\\':
			s.pos += 2
			continue
		case c == q:
			s.pos++
			return nil
		case c == '\n':
			return s.errorf("newline in string")
		}
		s.pos++
	}
	return s.errorf("unterminated string")
}

func isBare(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
