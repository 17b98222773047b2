package cargo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qryxip/cargo-scripts/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bin(name string) model.Target {
	return model.Target{Name: name, Kind: []string{"bin"}, SrcPath: "/ws/" + name + "/src/main.rs"}
}

func strp(s string) *string { return &s }

func TestSelectBin(t *testing.T) {
	t.Parallel()

	lib := model.Target{Name: "a", Kind: []string{"lib"}}

	tests := []struct {
		name       string
		targets    []model.Target
		defaultRun *string
		want       string
		err        error
	}{
		{"single", []model.Target{lib, bin("a")}, nil, "a", nil},
		{"none", []model.Target{lib}, nil, "", ErrNoTarget},
		{"ambiguous", []model.Target{bin("a"), bin("b")}, nil, "", ErrAmbiguousTarget},
		{"default-run", []model.Target{bin("a"), bin("b")}, strp("b"), "b", nil},
		{"default-run missing", []model.Target{bin("a")}, strp("z"), "", ErrNoTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SelectBin(tt.targets, tt.defaultRun)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDefaultBin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "Cargo.toml")
	text := "[package]\nname = \"a\"\ndefault-run = \"b\"\n"
	writeFile(t, manifestPath, text)

	pkg := &model.Package{Name: "a", ManifestPath: manifestPath, Targets: []model.Target{bin("a"), bin("b")}}
	src, got, err := DefaultBin(pkg)
	require.NoError(t, err)
	assert.Equal(t, "/ws/b/src/main.rs", src)
	assert.Equal(t, text, got)
}

func TestParseMetadataAndFind(t *testing.T) {
	t.Parallel()

	data := `{
  "packages": [
    {"name": "hello", "version": "0.0.0", "manifest_path": "/ws/hello/Cargo.toml",
     "targets": [{"name": "hello", "kind": ["bin"], "src_path": "/ws/hello/src/main.rs"}]}
  ],
  "workspace_root": "/ws",
  "resolve": null,
  "version": 1
}`
	md, err := ParseMetadata([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "/ws", md.WorkspaceRoot)
	require.NoError(t, CheckVirtual(md))

	pkg, err := FindPackage(md, "hello")
	require.NoError(t, err)
	assert.Equal(t, "/ws/hello/Cargo.toml", pkg.ManifestPath)
	assert.True(t, pkg.Targets[0].IsBin())

	_, err = FindPackage(md, "nope")
	assert.ErrorIs(t, err, ErrNoSuchPackage)
}

func TestCheckVirtual(t *testing.T) {
	t.Parallel()

	root := "hello"
	assert.ErrorIs(t, CheckVirtual(&model.Metadata{Resolve: &model.Resolve{Root: &root}}), ErrNotVirtual)
	assert.ErrorIs(t, CheckVirtual(&model.Metadata{
		WorkspaceRoot: "/ws",
		Packages:      []model.Package{{Name: "root", ManifestPath: "/ws/Cargo.toml"}},
	}), ErrNotVirtual)
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cargo new --vcs none '/tmp/my ws/template'",
		CommandLine("cargo", []string{"new", "--vcs", "none", "/tmp/my ws/template"}))
}
