package script

import (
	"bytes"
	"strings"

	"github.com/qryxip/cargo-scripts/internal/model"
)

// Cut is the part of one doc line covered by a rendered-doc span.
type Cut struct {
	Line int
	// Start is a column in the line's rendered text.
	Start int
	// End is a column in the line's rendered text, or -1 when the cut runs
	// through the line's newline.
	End int
}

// MapSpan converts a rendered-doc span into per-line cuts, in line order.
// Lines with no overlap get no cut. An empty span yields a single empty cut on
// the line containing it, or nothing when it sits past the last line.
func MapSpan(doc []model.DocLine, span model.Span) []Cut {
	if span.Len() == 0 {
		for i, l := range doc {
			if l.Rendered().Contains(span.Start) {
				col := span.Start - l.Offset
				return []Cut{{Line: i, Start: col, End: col}}
			}
		}
		return nil
	}

	var cuts []Cut
	for i, l := range doc {
		if span.End <= l.Offset || span.Start >= l.End() {
			continue
		}
		c := Cut{Line: i, Start: max(span.Start-l.Offset, 0), End: -1}
		if span.End < l.End() {
			c.End = span.End - l.Offset
		}
		cuts = append(cuts, c)
	}
	return cuts
}

// Splice replaces span of the rendered doc with replacement and rebuilds the
// whole file. Doc lines without a cut and every byte outside the doc run are
// copied from the original text; cut lines are re-serialized with the
// source's marker. A replacement not ending in a newline still ends its line.
// An empty span at the end of the rendered doc appends after the last doc
// line (or after the directive when there is no doc comment). A file that
// ends inside the doc run without a final newline still ends without one.
func Splice(src *model.Source, span model.Span, replacement string) []byte {
	var b bytes.Buffer

	if src.Directive != nil {
		writeVerbatim(&b, src.Text, *src.Directive)
	}

	cuts := MapSpan(src.Doc, span)
	first, last := len(src.Doc), -1
	if len(cuts) > 0 {
		first, last = cuts[0].Line, cuts[len(cuts)-1].Line
	}

	for i, l := range src.Doc {
		if i < first || i > last {
			writeVerbatim(&b, src.Text, l.Span)
			continue
		}
		if i > first {
			continue
		}

		prefix := l.Text[:cuts[0].Start]
		suffix := ""
		if end := cuts[len(cuts)-1]; end.End >= 0 {
			suffix = src.Doc[end.Line].Text[end.End:] + "\n"
		}
		writeDocLines(&b, src.Marker, prefix+replacement+suffix)
	}

	if len(cuts) == 0 {
		writeDocLines(&b, src.Marker, replacement)
	}

	b.Write(src.Text[src.Rest:])
	if n := len(src.Text); n > 0 && src.Rest == n && src.Text[n-1] != '\n' {
		return bytes.TrimSuffix(b.Bytes(), []byte("\n"))
	}
	return b.Bytes()
}

// writeVerbatim copies the line at span, a trailing CR included, and ends it
// with a newline.
func writeVerbatim(b *bytes.Buffer, text []byte, span model.Span) {
	b.Write(text[span.Start:span.End])
	b.WriteByte('\n')
}

func writeDocLines(b *bytes.Buffer, marker, text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		b.WriteString(FormatLine(marker, line))
		b.WriteByte('\n')
	}
}

// FormatLine serializes one doc line: marker, a space and the text, or the
// bare marker for an empty line.
func FormatLine(marker, text string) string {
	if text == "" {
		return marker
	}
	return marker + " " + text
}
