package tomledit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := Parse([]byte(src))
	require.NoError(t, err)
	return d
}

func TestParseLayout(t *testing.T) {
	t.Parallel()

	src := "# top\nname = \"x\" # c\n\n[workspace]\nmembers = [\n    \"a\", # first\n    'b',\n]\nexclude = []\n\n[[bin]]\nname = \"y\"\n"
	d := parse(t, src)

	kv := d.Lookup("workspace", "members")
	require.NotNil(t, kv)
	require.NotNil(t, kv.Array)
	require.Len(t, kv.Array.Elems, 2)
	assert.Equal(t, `"a"`, d.Raw(kv.Array.Elems[0].Span))
	assert.Equal(t, `'b'`, d.Raw(kv.Array.Elems[1].Span))
	assert.GreaterOrEqual(t, kv.Array.Elems[1].Comma, 0)

	assert.NotNil(t, d.Lookup("name"))
	assert.Nil(t, d.Lookup("bin", "name"), "array tables are not plain tables")
	assert.NotNil(t, d.Table("workspace"))
	assert.Nil(t, d.Table("bin"))
	assert.Equal(t, src, d.String())
}

func TestParseDottedAndQuotedKeys(t *testing.T) {
	t.Parallel()

	d := parse(t, "workspace.members = [\"a\"]\n\"quoted key\" = 1\n[package.metadata]\n'lit' = true\n")
	assert.NotNil(t, d.Lookup("workspace", "members"))
	assert.NotNil(t, d.Lookup("quoted key"))
	assert.NotNil(t, d.Lookup("package", "metadata", "lit"))
}

func TestParseStrings(t *testing.T) {
	t.Parallel()

	d := parse(t, "a = \"\"\"x\n\"y\"\"\"\"\nb = '''one\ntwo'''\nc = \"esc \\\" ] , #\"\nd = [\"]\", '#']\ne = 1979-05-27 07:32:00Z\n")
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		assert.NotNil(t, d.Lookup(k), k)
	}
	arr := d.Lookup("d").Array
	require.NotNil(t, arr)
	assert.Len(t, arr.Elems, 2)
	assert.Equal(t, "1979-05-27 07:32:00Z", d.Raw(d.Lookup("e").Value))
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("a = [\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("a = 1\na = 2\n"))
	assert.Error(t, err)
}

func TestStringValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`"a"`, "a", true},
		{`'C:\x'`, `C:\x`, true},
		{`"a\tb"`, "a\tb", true},
		{`"\u00e9"`, "é", true},
		{`1`, "", false},
		{`["a"]`, "", false},
	}
	for _, tt := range tests {
		got, ok := StringValue(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "src/a", `"src/a"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"control", "a\x01", `"a\u0001"`},
		{"unicode", "é", `"é"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Quote(tt.in)
			assert.Equal(t, tt.want, got)
			s, ok := StringValue(got)
			assert.True(t, ok)
			assert.Equal(t, tt.in, s)
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "members", Key("members"))
	assert.Equal(t, `"a b"`, Key("a b"))
	assert.Equal(t, `workspace."a.b"`, DottedKey([]string{"workspace", "a.b"}))
}

func TestSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		path []string
		raw  string
		want string
	}{
		{
			"replace keeps comment",
			"[package]\nname = \"a\" # the name\nversion = \"1\"\n",
			[]string{"package", "name"}, `"b"`,
			"[package]\nname = \"b\" # the name\nversion = \"1\"\n",
		},
		{
			"insert after last key of table",
			"[package]\nname = \"a\"\n\n[dependencies]\n",
			[]string{"package", "publish"}, "false",
			"[package]\nname = \"a\"\npublish = false\n\n[dependencies]\n",
		},
		{
			"insert without trailing newline",
			"[package]\nname = \"a\"",
			[]string{"package", "publish"}, "false",
			"[package]\nname = \"a\"\npublish = false\n",
		},
		{
			"new table",
			"[package]\nname = \"a\"\n",
			[]string{"workspace", "members"}, "[]",
			"[package]\nname = \"a\"\n\n[workspace]\nmembers = []\n",
		},
		{
			"empty document",
			"",
			[]string{"workspace", "exclude"}, "[]",
			"[workspace]\nexclude = []\n",
		},
		{
			"root key",
			"# c\n[a]\nx = 1\n",
			[]string{"top"}, "1",
			"top = 1\n# c\n[a]\nx = 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := parse(t, tt.src).Set(tt.path, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestSetInsideInlineTable(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "workspace = { members = [] }\n").Set([]string{"workspace", "exclude"}, "[]")
	assert.ErrorIs(t, err, ErrInlineValue)
}

func TestAppend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single line", "m = [\"a\"]\n", "m = [\"a\", \"x\"]\n"},
		{"single line trailing comma", "m = [\"a\",]\n", "m = [\"a\", \"x\",]\n"},
		{"empty", "m = []\n", "m = [\"x\"]\n"},
		{"empty multi-line", "m = [\n]\n", "m = [\"x\"]\n"},
		{"empty with comment", "m = [\n  # none\n]\n", "m = [\"x\"\n  # none\n]\n"},
		{
			"multi-line trailing comma",
			"m = [\n  \"a\",\n  \"b\", # last\n]\n",
			"m = [\n  \"a\",\n  \"b\", # last\n  \"x\",\n]\n",
		},
		{
			"multi-line no trailing comma",
			"m = [\n\t\"a\" # note\n]\n",
			"m = [\n\t\"a\", # note\n\t\"x\"\n]\n",
		},
		{"multi-line crlf", "m = [\r\n  \"a\",\r\n]\r\n", "m = [\r\n  \"a\",\r\n  \"x\",\r\n]\r\n"},
		{"missing key", "[workspace]\n", "[workspace]\nm = [\"x\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := []string{"m"}
			if tt.name == "missing key" {
				path = []string{"workspace", "m"}
			}
			d, err := parse(t, tt.src).Append(path, `"x"`)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestAppendNotArray(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "m = \"a\"\n").Append([]string{"m"}, `"x"`)
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		index int
		want  string
	}{
		{"first", "m = [\"a\", \"b\"]\n", 0, "m = [\"b\"]\n"},
		{"last", "m = [\"a\", \"b\"]\n", 1, "m = [\"a\"]\n"},
		{"middle", "m = [\"a\", \"b\", \"c\"]\n", 1, "m = [\"a\", \"c\"]\n"},
		{"only", "m = [\"a\"]\n", 0, "m = []\n"},
		{"only with comma", "m = [\"a\",]\n", 0, "m = []\n"},
		{"last keeps trailing comma", "m = [\"a\", \"b\",]\n", 1, "m = [\"a\",]\n"},
		{
			"own line",
			"m = [\n    \"a\",\n    \"b\", # gone\n    \"c\",\n]\n",
			1,
			"m = [\n    \"a\",\n    \"c\",\n]\n",
		},
		{
			"own line without comma",
			"m = [\n    \"a\",\n    \"b\"\n]\n",
			1,
			"m = [\n    \"a\",\n]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := parse(t, tt.src).Remove([]string{"m"}, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "m = []\n").Remove([]string{"m"}, 0)
	assert.Error(t, err)
	_, err = parse(t, "n = 1\n").Remove([]string{"m"}, 0)
	assert.ErrorIs(t, err, ErrNotArray)
}
