// Package parse locates the directive line and the leading doc-comment run of
// a script using tree-sitter.
package parse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/qryxip/cargo-scripts/internal/lang"
	"github.com/qryxip/cargo-scripts/internal/model"
)

var (
	// ErrNonUTF8Source is returned for sources that are not valid UTF-8.
	ErrNonUTF8Source = errors.New("source is not valid UTF-8")
	// ErrMalformedSource is returned when the grammar rejects the source.
	ErrMalformedSource = errors.New("source is not syntactically valid")
)

// DocComment parses source and returns its directive line and doc-comment
// lines. The parser must be created for l.
func DocComment(l *lang.Language, parser *sitter.Parser, source []byte) (*model.Source, error) {
	if !utf8.Valid(source) {
		return nil, ErrNonUTF8Source
	}

	src := &model.Source{Text: source, Marker: l.DocMarker}
	input := source
	firstRow := 0

	if d, ok := directive(l, source); ok {
		src.Directive = &d
		src.Rest = nextLine(source, d.End)
		firstRow = 1

		// The grammar never sees the directive; blanking keeps byte offsets.
		input = bytes.Clone(source)
		for i := d.Start; i < d.End; i++ {
			input[i] = ' '
		}
	}

	tree, err := parser.ParseCtx(context.Background(), nil, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if n := firstError(root); n != nil {
			p := n.StartPoint()
			return nil, fmt.Errorf("%w: unexpected syntax at %d:%d", ErrMalformedSource, p.Row+1, p.Column+1)
		}
		return nil, ErrMalformedSource
	}

	offset := 0
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		start := child.StartPoint()
		if child.Type() != l.CommentNode || int(start.Row) != firstRow+len(src.Doc) || start.Column != 0 {
			break
		}

		lineStart := int(child.StartByte())
		end := lineEnd(source, lineStart)
		line := string(source[lineStart:end])
		if !strings.HasPrefix(line, l.DocMarker) {
			break
		}

		text := strings.TrimSuffix(line, "\r")
		text = strings.TrimPrefix(text[len(l.DocMarker):], " ")

		src.Doc = append(src.Doc, model.DocLine{
			Span:   model.Span{Start: lineStart, End: end},
			Text:   text,
			Offset: offset,
		})
		offset += len(text) + 1
		src.Rest = nextLine(source, end)
	}

	return src, nil
}

func directive(l *lang.Language, source []byte) (model.Span, bool) {
	if l.DirectivePrefix == "" || !bytes.HasPrefix(source, []byte(l.DirectivePrefix)) {
		return model.Span{}, false
	}
	for _, p := range l.NotDirective {
		if bytes.HasPrefix(source, []byte(p)) {
			return model.Span{}, false
		}
	}
	return model.Span{Start: 0, End: lineEnd(source, 0)}, true
}

// lineEnd returns the offset of the newline ending the line containing from,
// or len(source).
func lineEnd(source []byte, from int) int {
	if i := bytes.IndexByte(source[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(source)
}

// nextLine returns the offset just past the newline at end, clamped to the
// source length.
func nextLine(source []byte, end int) int {
	if end < len(source) {
		return end + 1
	}
	return len(source)
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			if n := firstError(child); n != nil {
				return n
			}
		}
	}
	return nil
}
