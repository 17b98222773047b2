package tomledit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotArray is returned when an array edit targets another kind of value.
	ErrNotArray = errors.New("value is not an array")
	// ErrInlineValue is returned when a key would have to be added inside an
	// inline table or below a non-table value.
	ErrInlineValue = errors.New("key lies inside an inline value")
)

// Set assigns raw, an encoded TOML value, to path. An existing value is
// replaced in place. A new key goes after the last line of its table; a
// missing table is appended to the end of the document.
func (d *Document) Set(path []string, raw string) (*Document, error) {
	if len(path) == 0 {
		return nil, errors.New("empty key")
	}
	if kv := d.Lookup(path...); kv != nil {
		return d.replace(kv.Value, raw)
	}
	for i := 1; i < len(path); i++ {
		if d.Lookup(path[:i]...) != nil {
			return nil, fmt.Errorf("%w: %s", ErrInlineValue, DottedKey(path[:i]))
		}
	}

	name, key := path[:len(path)-1], path[len(path)-1]
	line := Key(key) + " = " + raw + "\n"
	if t := d.Table(name...); t != nil {
		return d.insert(t.LastEnd, line)
	}

	var b strings.Builder
	if len(d.src) > 0 {
		if !bytes.HasSuffix(d.src, []byte("\n")) {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "[%s]\n%s", DottedKey(name), line)
	return d.replace(Span{Start: len(d.src), End: len(d.src)}, b.String())
}

// SetString assigns the string s to path.
func (d *Document) SetString(path []string, s string) (*Document, error) {
	return d.Set(path, Quote(s))
}

// Append adds raw as the last element of the array at path, following the
// array's layout: single-line arrays get ", raw", multi-line arrays get a new
// line with the last element's indentation. A missing key is created as a
// one-element array.
func (d *Document) Append(path []string, raw string) (*Document, error) {
	kv := d.Lookup(path...)
	if kv == nil {
		return d.Set(path, "["+raw+"]")
	}
	arr := kv.Array
	if arr == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotArray, DottedKey(path))
	}

	if len(arr.Elems) == 0 {
		inner := d.src[arr.Open+1 : arr.Close]
		if bytes.IndexByte(inner, '#') < 0 {
			return d.replace(Span{Start: arr.Open + 1, End: arr.Close}, raw)
		}
		return d.replace(Span{Start: arr.Open + 1, End: arr.Open + 1}, raw)
	}

	last := arr.Elems[len(arr.Elems)-1]
	after := last.Span.End
	if last.Comma >= 0 {
		after = last.Comma + 1
	}

	nl := bytes.IndexByte(d.src[after:arr.Close], '\n')
	if nl < 0 {
		if last.Comma >= 0 {
			return d.insert(after, " "+raw+",")
		}
		return d.insert(last.Span.End, ", "+raw)
	}

	eol := after + nl
	newline := "\n"
	if eol > 0 && d.src[eol-1] == '\r' {
		eol--
		newline = "\r\n"
	}
	entry := newline + d.indent(last.Span.Start) + raw

	if last.Comma >= 0 {
		return d.insert(eol, entry+",")
	}
	var out []byte
	out = append(out, d.src[:last.Span.End]...)
	out = append(out, ',')
	out = append(out, d.src[last.Span.End:eol]...)
	out = append(out, entry...)
	out = append(out, d.src[eol:]...)
	return Parse(out)
}

// Remove deletes element i of the array at path together with its comma. An
// element alone on its line takes the whole line with it.
func (d *Document) Remove(path []string, i int) (*Document, error) {
	kv := d.Lookup(path...)
	if kv == nil || kv.Array == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotArray, DottedKey(path))
	}
	elems := kv.Array.Elems
	if i < 0 || i >= len(elems) {
		return nil, fmt.Errorf("index %d out of range for %s", i, DottedKey(path))
	}

	e := elems[i]
	after := e.Span.End
	if e.Comma >= 0 {
		after = e.Comma + 1
	}

	if span, ok := d.ownLine(kv.Array, e.Span.Start, after); ok {
		return d.replace(span, "")
	}

	switch {
	case len(elems) == 1:
		return d.replace(Span{Start: e.Span.Start, End: after}, "")
	case i < len(elems)-1:
		return d.replace(Span{Start: e.Span.Start, End: elems[i+1].Span.Start}, "")
	default:
		return d.replace(Span{Start: elems[i-1].Span.End, End: e.Span.End}, "")
	}
}

// ownLine reports the full line range of an element that shares its line
// with nothing but whitespace and a comment.
func (d *Document) ownLine(arr *Array, start, after int) (Span, bool) {
	ls := bytes.LastIndexByte(d.src[:start], '\n') + 1
	if ls <= arr.Open || !isBlank(d.src[ls:start]) {
		return Span{}, false
	}
	if bytes.IndexByte(d.src[start:after], '\n') >= 0 {
		return Span{}, false
	}

	j := after
	for j < arr.Close && (d.src[j] == ' ' || d.src[j] == '\t') {
		j++
	}
	if j < arr.Close && d.src[j] == '#' {
		j += bytes.IndexByte(d.src[j:], '\n')
	}
	if j < arr.Close && d.src[j] == '\r' {
		j++
	}
	if j >= arr.Close || d.src[j] != '\n' {
		return Span{}, false
	}
	return Span{Start: ls, End: j + 1}, true
}

// indent returns the leading whitespace of the line holding pos when nothing
// else precedes pos on it.
func (d *Document) indent(pos int) string {
	ls := bytes.LastIndexByte(d.src[:pos], '\n') + 1
	if ws := d.src[ls:pos]; isBlank(ws) {
		return string(ws)
	}
	return "    "
}

func (d *Document) insert(at int, text string) (*Document, error) {
	if at == len(d.src) && at > 0 && d.src[at-1] != '\n' {
		text = "\n" + text
	}
	return d.replace(Span{Start: at, End: at}, text)
}

// replace rewrites span and re-parses, so an edit can never produce a
// document go-toml rejects.
func (d *Document) replace(span Span, text string) (*Document, error) {
	out := make([]byte, 0, len(d.src)-span.End+span.Start+len(text))
	out = append(out, d.src[:span.Start]...)
	out = append(out, text...)
	out = append(out, d.src[span.End:]...)
	return Parse(out)
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}
