// Package fence finds the fenced code block carrying the embedded manifest in
// a rendered documentation comment.
package fence

import (
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/qryxip/cargo-scripts/internal/model"
)

// Tag is the info string that marks the manifest block.
const Tag = "cargo"

var (
	// ErrFenceNotFound is returned when no block is tagged with the tag.
	ErrFenceNotFound = errors.New("could not find the `cargo` code block")
	// ErrAmbiguousFence is returned when more than one block is tagged.
	ErrAmbiguousFence = errors.New("multiple `cargo` code blocks")
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))

// Fence describes the located block in rendered-doc coordinates.
type Fence struct {
	// Content covers the block's content lines in full, fence lines
	// excluded.
	Content model.Span
	// Lines holds the content lines split into what markdown strips from
	// them and the text that is left.
	Lines []Line
	// Block runs from the start of the opening fence line through the
	// newline of the closing fence line (or to the end of the doc when the
	// block is never closed).
	Block model.Span
	// Open and Close are the fence lines as written; Close is empty for an
	// unclosed block.
	Open  string
	Close string
}

// Line is one content line of a block. Prefix is the indentation or
// container markers (`> `, list indentation) in front of the text; Padding
// counts the spaces a partly consumed tab contributes to the start of Text.
// Text keeps its newline.
type Line struct {
	Prefix  string
	Padding int
	Text    string
}

// Text returns the block's content with every line prefix removed.
func (f *Fence) Text() string {
	var b strings.Builder
	for _, l := range f.Lines {
		b.WriteString(l.Text)
	}
	return b.String()
}

// Indent puts line prefixes back in front of body so it reads as the
// block's content at the block's position. Line i gets the prefix of content
// line i; lines past the recorded ones reuse the last prefix. Indent of Text
// returns the content as written.
func (f *Fence) Indent(body string) string {
	if len(f.Lines) == 0 {
		return body
	}
	var b strings.Builder
	for i, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		l := f.Lines[min(i, len(f.Lines)-1)]
		if pad := strings.Repeat(" ", l.Padding); strings.HasPrefix(line, pad) {
			line = line[len(pad):]
		}
		prefix := l.Prefix
		if i >= len(f.Lines) && strings.TrimSpace(line) == "" {
			prefix = strings.TrimRight(prefix, " \t")
		}
		b.WriteString(prefix)
		b.WriteString(line)
	}
	return b.String()
}

// EventKind enumerates the markdown events the locator reacts to.
type EventKind int

const (
	FenceStart EventKind = iota
	Text
	FenceEnd
)

// Event is one step of the markdown event stream. A FenceStart span covers
// the opening fence line; a Text span covers the content lines in full, and
// Lines splits them.
type Event struct {
	Kind  EventKind
	Info  string
	Span  model.Span
	Lines []Line
}

// StateKind enumerates the states of the locator.
type StateKind int

const (
	None StateKind = iota
	Start
	InText
	End
)

// State is the locator's state machine. Open is set from Start on; Span and
// Lines are set in InText and End.
type State struct {
	Kind  StateKind
	Open  model.Span
	Span  model.Span
	Lines []Line
}

// Step advances the state machine by one event. A second tagged block after
// the first one closed is reported as ErrAmbiguousFence.
func (s State) Step(ev Event) (State, error) {
	switch s.Kind {
	case None:
		if ev.Kind == FenceStart && ev.Info == Tag {
			return State{Kind: Start, Open: ev.Span}, nil
		}
	case Start:
		if ev.Kind == Text {
			return State{Kind: InText, Open: s.Open, Span: ev.Span, Lines: ev.Lines}, nil
		}
		if ev.Kind == FenceEnd && ev.Info == Tag {
			// An empty block has no text; keep looking.
			return State{Kind: None}, nil
		}
	case InText:
		if ev.Kind == FenceEnd && ev.Info == Tag {
			s.Kind = End
			return s, nil
		}
	case End:
		if ev.Kind == FenceStart && ev.Info == Tag {
			return s, ErrAmbiguousFence
		}
	}
	return s, nil
}

// Events renders doc as markdown and returns the fenced-code-block events in
// document order.
func Events(doc string) []Event {
	source := []byte(doc)
	root := md.Parser().Parse(text.NewReader(source))

	var events []Event
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		info := ""
		var open model.Span
		if block.Info != nil {
			info = string(block.Info.Segment.Value(source))
			open = lineAt(doc, block.Info.Segment.Start)
		}
		if !entering {
			events = append(events, Event{Kind: FenceEnd, Info: info})
			return ast.WalkContinue, nil
		}
		events = append(events, Event{Kind: FenceStart, Info: info, Span: open})

		segs := block.Lines()
		if segs.Len() == 0 {
			return ast.WalkContinue, nil
		}
		ev := Event{Kind: Text}
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			lineStart := lineAt(doc, seg.Start).Start
			if i == 0 {
				ev.Span.Start = lineStart
			}
			ev.Span.End = seg.Stop
			ev.Lines = append(ev.Lines, Line{
				Prefix:  doc[lineStart:seg.Start],
				Padding: seg.Padding,
				Text:    string(seg.Value(source)),
			})
		}
		events = append(events, ev)
		return ast.WalkContinue, nil
	})
	return events
}

// Locate finds the unique block tagged with Tag in doc.
func Locate(doc string) (*Fence, error) {
	state := State{}
	for _, ev := range Events(doc) {
		var err error
		if state, err = state.Step(ev); err != nil {
			return nil, err
		}
	}
	if state.Kind != End {
		return nil, ErrFenceNotFound
	}

	f := &Fence{
		Content: state.Span,
		Lines:   state.Lines,
		Block:   model.Span{Start: state.Open.Start, End: state.Span.End},
		Open:    doc[state.Open.Start:state.Open.End],
	}

	if state.Span.End < len(doc) {
		next := lineAt(doc, state.Span.End)
		if line := doc[next.Start:next.End]; closes(f.Open, line) {
			f.Close = line
			f.Block.End = min(next.End+1, len(doc))
		}
	}
	return f, nil
}

// lineAt returns the line containing offset, newline excluded.
func lineAt(doc string, offset int) model.Span {
	start := strings.LastIndexByte(doc[:offset], '\n') + 1
	end := len(doc)
	if i := strings.IndexByte(doc[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	return model.Span{Start: start, End: end}
}

// closes reports whether line is a closing fence for the opening fence line
// open. Container markers in front of either are ignored.
func closes(open, line string) bool {
	const containers = " \t>-*+"
	open = strings.TrimLeft(open, containers)
	for len(open) > 0 && open[0] >= '0' && open[0] <= '9' {
		open = strings.TrimLeft(open[1:], "0123456789.)"+containers)
	}
	if len(open) < 3 || (open[0] != '`' && open[0] != '~') {
		return false
	}
	n := len(open) - len(strings.TrimLeft(open, open[:1]))

	line = strings.TrimRight(strings.TrimLeft(line, " \t>"), " \t")
	return len(line) >= n && strings.Trim(line, open[:1]) == ""
}
