package fence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qryxip/cargo-scripts/internal/model"
)

func TestLocate(t *testing.T) {
	t.Parallel()

	doc := "hi\n```cargo\nfoo = 1\nbar = 2\n```\nafter\n"
	f, err := Locate(doc)
	require.NoError(t, err)

	assert.Equal(t, "foo = 1\nbar = 2\n", doc[f.Content.Start:f.Content.End])
	assert.Equal(t, "```cargo\nfoo = 1\nbar = 2\n```\n", doc[f.Block.Start:f.Block.End])
	assert.Equal(t, "```cargo", f.Open)
	assert.Equal(t, "```", f.Close)
}

func TestLocateTildeFence(t *testing.T) {
	t.Parallel()

	doc := "~~~~cargo\n[dependencies]\n~~~~\n"
	f, err := Locate(doc)
	require.NoError(t, err)

	assert.Equal(t, "[dependencies]\n", doc[f.Content.Start:f.Content.End])
	assert.Equal(t, "~~~~cargo", f.Open)
	assert.Equal(t, "~~~~", f.Close)
	assert.Equal(t, model.Span{Start: 0, End: len(doc)}, f.Block)
}

func TestLocateUnclosed(t *testing.T) {
	t.Parallel()

	doc := "```cargo\na = 1\n"
	f, err := Locate(doc)
	require.NoError(t, err)

	assert.Equal(t, "a = 1\n", doc[f.Content.Start:f.Content.End])
	assert.Empty(t, f.Close)
	assert.Equal(t, len(doc), f.Block.End)
}

func TestLocateStripsLinePrefixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		text     string
		prefixes []string
		close    string
	}{
		{"indented", "  ```cargo\n  a = 1\n  b = 2\n  ```\n", "a = 1\nb = 2\n", []string{"  ", "  "}, "  ```"},
		{"less indented line", "  ```cargo\na = 1\n   b = 2\n  ```\n", "a = 1\n b = 2\n", []string{"", "  "}, "  ```"},
		{"list item", "- ```cargo\n  a = 1\n  b = 2\n  ```\n", "a = 1\nb = 2\n", []string{"  ", "  "}, "  ```"},
		{"blockquote", "> ```cargo\n> a = 1\n> b = 2\n> ```\n", "a = 1\nb = 2\n", []string{"> ", "> "}, "> ```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := Locate(tt.doc)
			require.NoError(t, err)

			var prefixes []string
			for _, l := range f.Lines {
				prefixes = append(prefixes, l.Prefix)
			}
			assert.Equal(t, tt.prefixes, prefixes)
			assert.Equal(t, tt.close, f.Close)
			assert.Equal(t, model.Span{Start: 0, End: len(tt.doc)}, f.Block)
			assert.Equal(t, tt.text, f.Text())
			assert.Equal(t, tt.doc[f.Content.Start:f.Content.End], f.Indent(f.Text()))
		})
	}
}

func TestIndentExtraLines(t *testing.T) {
	t.Parallel()

	f, err := Locate("> ```cargo\n> a = 1\n> ```\n")
	require.NoError(t, err)
	assert.Equal(t, "> x = 1\n>\n> y = 2\n", f.Indent("x = 1\n\ny = 2\n"))
}

func TestLocateCloseNeedsLongEnoughFence(t *testing.T) {
	t.Parallel()

	doc := "````cargo\na = 1\n```\n````\n"
	f, err := Locate(doc)
	require.NoError(t, err)
	assert.Equal(t, "a = 1\n```\n", f.Text())
	assert.Equal(t, "````", f.Close)
}

func TestLocateSkipsOtherTags(t *testing.T) {
	t.Parallel()

	doc := "```rust\nfn x() {}\n```\n\n```cargo extra\nno = 1\n```\n\n```cargo\nyes = 1\n```\n"
	f, err := Locate(doc)
	require.NoError(t, err)
	assert.Equal(t, "yes = 1\n", doc[f.Content.Start:f.Content.End])
}

func TestLocateIsCaseSensitive(t *testing.T) {
	t.Parallel()

	_, err := Locate("```Cargo\na = 1\n```\n")
	assert.True(t, errors.Is(err, ErrFenceNotFound), "got %v", err)
}

func TestLocateNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"prose only", "just words\n"},
		{"empty block", "```cargo\n```\n"},
		{"indented code", "    cargo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Locate(tt.doc)
			assert.ErrorIs(t, err, ErrFenceNotFound)
		})
	}
}

func TestLocateAmbiguous(t *testing.T) {
	t.Parallel()

	_, err := Locate("```cargo\na = 1\n```\n\n```cargo\nb = 2\n```\n")
	assert.ErrorIs(t, err, ErrAmbiguousFence)
}

func TestStateMachine(t *testing.T) {
	t.Parallel()

	span := model.Span{Start: 4, End: 9}
	steps := []struct {
		ev   Event
		want StateKind
	}{
		{Event{Kind: FenceStart, Info: "rust"}, None},
		{Event{Kind: Text, Span: model.Span{Start: 0, End: 1}}, None},
		{Event{Kind: FenceEnd, Info: "rust"}, None},
		{Event{Kind: FenceStart, Info: Tag}, Start},
		{Event{Kind: Text, Span: span}, InText},
		{Event{Kind: Text, Span: model.Span{Start: 20, End: 30}}, InText},
		{Event{Kind: FenceEnd, Info: Tag}, End},
		{Event{Kind: FenceStart, Info: "toml"}, End},
	}

	var s State
	for i, step := range steps {
		var err error
		s, err = s.Step(step.ev)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.want, s.Kind, "step %d", i)
	}
	assert.Equal(t, span, s.Span)

	_, err := s.Step(Event{Kind: FenceStart, Info: Tag})
	assert.ErrorIs(t, err, ErrAmbiguousFence)
}
