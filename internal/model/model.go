// Package model defines core data structures for cargo-scripts.
package model

import "strings"

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// DocLine is one line of the leading run of documentation comments.
type DocLine struct {
	// Span covers the whole comment line in the source, newline excluded.
	Span Span
	// Text is the line with the comment marker and at most one following
	// space stripped.
	Text string
	// Offset is where Text starts inside the rendered doc.
	Offset int
}

// End returns the rendered offset just past the line's newline.
func (l DocLine) End() int {
	return l.Offset + len(l.Text) + 1
}

// Rendered returns the line's range in the rendered doc, newline included.
func (l DocLine) Rendered() Span {
	return Span{Start: l.Offset, End: l.End()}
}

// Source is a script split into its directive line, its leading doc-comment
// run and everything after it.
type Source struct {
	Text []byte
	// Directive is the interpreter line (newline excluded), if any.
	Directive *Span
	Doc       []DocLine
	// Rest is the offset of the first byte after the doc-comment run.
	Rest int
	// Marker is the comment marker the doc lines were written with.
	Marker string
}

// Rendered returns the concatenated doc-comment text, one "\n" per line.
func (s *Source) Rendered() string {
	var b strings.Builder
	for _, l := range s.Doc {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// LineAt returns the index of the doc line whose rendered range (text plus
// newline) contains offset, or -1.
func (s *Source) LineAt(offset int) int {
	for i, l := range s.Doc {
		if l.Rendered().Contains(offset) {
			return i
		}
	}
	return -1
}

// Target is a build target of a package.
type Target struct {
	Name    string   `json:"name"`
	Kind    []string `json:"kind"`
	SrcPath string   `json:"src_path"`
}

// IsBin reports whether the target is a runnable binary.
func (t Target) IsBin() bool {
	for _, k := range t.Kind {
		if k == "bin" {
			return true
		}
	}
	return false
}

// Package is a workspace member as reported by the build tool.
type Package struct {
	Name         string   `json:"name"`
	ManifestPath string   `json:"manifest_path"`
	Targets      []Target `json:"targets"`
}

// Resolve is the dependency-resolution part of the metadata.
type Resolve struct {
	Root *string `json:"root"`
}

// Metadata is the subset of `cargo metadata --format-version 1` output the
// tool consumes.
type Metadata struct {
	Packages      []Package `json:"packages"`
	WorkspaceRoot string    `json:"workspace_root"`
	Resolve       *Resolve  `json:"resolve"`
}
