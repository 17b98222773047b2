// Package script moves a manifest in and out of the doc comment of a
// single-file script.
//
// A script carries its manifest in a fenced block tagged `cargo` inside the
// leading `//!` comment:
//
//	#!/usr/bin/env run-cargo-script
//	//! ```cargo
//	//! [package]
//	//! name = "hello"
//	//! ```
//	fn main() {}
//
// Extract cuts the block out and Inject puts one back. Lines the edit does not
// touch are copied byte for byte.
package script

import (
	"errors"
	"strings"

	"github.com/qryxip/cargo-scripts/internal/fence"
	"github.com/qryxip/cargo-scripts/internal/lang"
	"github.com/qryxip/cargo-scripts/internal/model"
	"github.com/qryxip/cargo-scripts/internal/parse"
)

// Placeholder stands in for an empty manifest.
const Placeholder = "# Leave blank."

// Transcoder converts scripts of one language.
type Transcoder struct {
	Lang *lang.Language
}

// New returns a transcoder for l.
func New(l *lang.Language) *Transcoder {
	return &Transcoder{Lang: l}
}

// Rust returns a transcoder for Rust scripts.
func Rust() *Transcoder {
	return New(lang.Rust())
}

// Parse splits text into directive, doc-comment run and the rest.
func (t *Transcoder) Parse(text []byte) (*model.Source, error) {
	p := t.Lang.NewParser()
	defer p.Close()
	return parse.DocComment(t.Lang, p, text)
}

// Extraction is the result of cutting the manifest out of a script.
type Extraction struct {
	// Manifest is the block's content.
	Manifest string
	// Residual is the script with the whole block collapsed to one bare
	// marker line.
	Residual []byte

	t      *Transcoder
	anchor int
	block  *fence.Fence
}

// Extract cuts the manifest block out of text.
func (t *Transcoder) Extract(text []byte) (*Extraction, error) {
	src, err := t.Parse(text)
	if err != nil {
		return nil, err
	}

	rendered := src.Rendered()
	f, err := fence.Locate(rendered)
	if err != nil {
		return nil, err
	}

	return &Extraction{
		Manifest: f.Text(),
		Residual: Splice(src, f.Block, "\n"),
		t:        t,
		anchor:   src.LineAt(f.Block.Start),
		block:    f,
	}, nil
}

// Inject puts manifest back where the block was, with the block's original
// fence lines and line prefixes. Injecting e.Manifest reproduces the
// extracted text.
func (e *Extraction) Inject(manifest string) ([]byte, error) {
	src, err := e.t.Parse(e.Residual)
	if err != nil {
		return nil, err
	}
	line := src.Doc[e.anchor]

	block := e.block.Open + "\n" + e.block.Indent(normalize(manifest))
	if e.block.Close != "" {
		block += e.block.Close + "\n"
	}
	return Splice(src, model.Span{Start: line.Offset, End: line.End()}, block), nil
}

// Inject embeds manifest into text. An existing `cargo` block has its content
// replaced. Without one, a new block takes the place of the last bare marker
// line of the doc comment, or is appended to the doc comment, or starts a new
// doc comment right after the directive line.
func (t *Transcoder) Inject(text []byte, manifest string) ([]byte, error) {
	src, err := t.Parse(text)
	if err != nil {
		return nil, err
	}

	rendered := src.Rendered()
	body := normalize(manifest)

	f, err := fence.Locate(rendered)
	if err == nil {
		return Splice(src, f.Content, f.Indent(body)), nil
	}
	if !errors.Is(err, fence.ErrFenceNotFound) || hasTaggedBlock(rendered) {
		return nil, err
	}

	block := "```" + fence.Tag + "\n" + body + "```\n"
	for i := len(src.Doc) - 1; i >= 0; i-- {
		if l := src.Doc[i]; l.Text == "" {
			return Splice(src, model.Span{Start: l.Offset, End: l.End()}, block), nil
		}
	}

	end := model.Span{Start: len(rendered), End: len(rendered)}
	if len(src.Doc) > 0 {
		block = "\n" + block
	}
	return Splice(src, end, block), nil
}

func normalize(manifest string) string {
	if manifest == "" {
		return Placeholder + "\n"
	}
	if !strings.HasSuffix(manifest, "\n") {
		return manifest + "\n"
	}
	return manifest
}

func hasTaggedBlock(doc string) bool {
	for _, ev := range fence.Events(doc) {
		if ev.Kind == fence.FenceStart && ev.Info == fence.Tag {
			return true
		}
	}
	return false
}
