package app

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/config"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/mocks"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/models"
	"github.com/shiroemons/go-libzunpack/pkg/asmz"
	"github.com/shiroemons/go-libzunpack/pkg/clr"
	"github.com/shiroemons/go-libzunpack/pkg/clr/clrtest"
)

// packedHost は名前 host のアセンブリに inner を圧縮して埋め込みます
func packedHost(t *testing.T, host, id string, inner []byte) []byte {
	t.Helper()
	data, err := asmz.Encode(inner, true)
	require.NoError(t, err)
	return clrtest.Build(clrtest.Assembly{
		Name:      host,
		Resources: []clrtest.Resource{{Name: asmz.FormatName("ns", id, true), Data: data}},
	})
}

// recordingUnpacker は ExtractAll の呼び出しを記録します
type recordingUnpacker struct {
	modules   []string
	outputDir string
	recursive bool
}

func (u *recordingUnpacker) ExtractAll(module *clr.Module, outputDir string, recursive bool) *models.Report {
	u.modules = append(u.modules, module.Name())
	u.outputDir = outputDir
	u.recursive = recursive
	return &models.Report{}
}

// mkdirFailFS は MkdirAll だけが失敗するファイルシステム
type mkdirFailFS struct {
	*mocks.MockFileSystem
}

func (fs *mkdirFailFS) MkdirAll(string, uint32) error {
	return errors.New("permission denied")
}

func newTestApp(cfg *config.Config, opts Options) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	opts.Stdout = &out
	return NewWithOptions(cfg, opts), &out
}

func TestApp_Run_SingleFile(t *testing.T) {
	foo := clrtest.Build(clrtest.Assembly{Name: "Foo"})
	fs := mocks.NewMockFileSystem()
	fs.Files["/in/Host.dll"] = packedHost(t, "Host", "res1", foo)

	cfg := config.New()
	cfg.InputPath = "/in/Host.dll"
	cfg.OutputDir = "/out"

	app, out := newTestApp(cfg, Options{FileSystem: fs})
	require.NoError(t, app.Run())

	assert.True(t, fs.Dirs["/out"])
	assert.Equal(t, []string{"/out/Foo.dll"}, fs.Writes)
	assert.Equal(t, foo, fs.Files["/out/Foo.dll"])
	assert.Equal(t, "Saving Foo.dll\n", out.String())
	assert.Len(t, app.Report().Written(), 1)
}

func TestApp_Run_Directory(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Dirs["/in"] = true
	fs.Dirs["/in/nested.dll"] = true
	fs.Files["/in/a.dll"] = packedHost(t, "A", "ra", clrtest.Build(clrtest.Assembly{Name: "FromA"}))
	fs.Files["/in/broken.dll"] = []byte("broken")
	fs.Files["/in/c.EXE"] = packedHost(t, "C", "rc", clrtest.Build(clrtest.Assembly{Name: "FromC"}))
	fs.Files["/in/notes.txt"] = []byte("text")

	cfg := config.New()
	cfg.InputPath = "/in"
	cfg.OutputDir = "/out"

	app, out := newTestApp(cfg, Options{FileSystem: fs})
	require.NoError(t, app.Run())

	assert.Equal(t, []string{"/out/FromA.dll", "/out/FromC.dll"}, fs.Writes)
	assert.Contains(t, out.String(), "Failed to load /in/broken.dll: ")
	assert.NotContains(t, out.String(), "notes.txt")
	assert.NotContains(t, out.String(), "neither a directory")
	assert.NotContains(t, fs.Reads, "/in/notes.txt")
}

func TestApp_Run_InvalidInput(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/in/readme.txt"] = []byte("text")
	fs.Files["/in/broken.dll"] = []byte("broken")

	tests := []struct {
		name        string
		input       string
		wantFailMsg bool
	}{
		{"存在しないパス", "/in/missing.dll", true},
		{"対象外の拡張子", "/in/readme.txt", false},
		{"壊れたモジュール", "/in/broken.dll", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.InputPath = tt.input
			cfg.OutputDir = "/out"

			app, out := newTestApp(cfg, Options{FileSystem: fs})
			require.NoError(t, app.Run())

			assert.Contains(t, out.String(), tt.input+" is neither a directory nor a valid assembly.\n")
			assert.Equal(t, tt.wantFailMsg, bytes.Contains(out.Bytes(), []byte("Failed to load")))
			assert.Empty(t, fs.Writes)
			assert.False(t, fs.Dirs["/out"])
		})
	}
}

func TestApp_Run_PassesConfig(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/in/Host.dll"] = clrtest.Build(clrtest.Assembly{Name: "Host"})

	cfg := config.New()
	cfg.InputPath = "/in/Host.dll"
	cfg.OutputDir = "/out"
	cfg.Recursive = true

	unpacker := &recordingUnpacker{}
	app, _ := newTestApp(cfg, Options{FileSystem: fs, Unpacker: unpacker})
	require.NoError(t, app.Run())

	assert.Equal(t, []string{"Host"}, unpacker.modules)
	assert.Equal(t, "/out", unpacker.outputDir)
	assert.True(t, unpacker.recursive)
}

func TestApp_Run_Recursive(t *testing.T) {
	leaf := clrtest.Build(clrtest.Assembly{Name: "Leaf"})
	mid := packedHost(t, "Mid", "leaf", leaf)
	fs := mocks.NewMockFileSystem()
	fs.Files["/in/Host.exe"] = packedHost(t, "Host", "mid", mid)

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"再帰なし", false, []string{"/out/Mid.dll"}},
		{"再帰あり", true, []string{"/out/Mid.dll", "/out/Leaf.dll"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs.Writes = nil
			cfg := config.New()
			cfg.InputPath = "/in/Host.exe"
			cfg.OutputDir = "/out"
			cfg.Recursive = tt.recursive

			app, _ := newTestApp(cfg, Options{FileSystem: fs})
			require.NoError(t, app.Run())
			assert.Equal(t, tt.want, fs.Writes)
		})
	}
}

func TestApp_Run_DryRun(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/in/Host.dll"] = packedHost(t, "Host", "res1", clrtest.Build(clrtest.Assembly{Name: "Foo"}))

	cfg := config.New()
	cfg.InputPath = "/in/Host.dll"
	cfg.OutputDir = "/out"
	cfg.DryRun = true

	app, out := newTestApp(cfg, Options{FileSystem: fs})
	require.NoError(t, app.Run())

	assert.Empty(t, fs.Writes)
	assert.False(t, fs.Dirs["/out"])
	assert.Contains(t, out.String(), "Saving Foo.dll (dry run)")
}

func TestApp_Run_Errors(t *testing.T) {
	t.Run("出力先ディレクトリを作成できない", func(t *testing.T) {
		base := mocks.NewMockFileSystem()
		base.Files["/in/Host.dll"] = clrtest.Build(clrtest.Assembly{Name: "Host"})

		cfg := config.New()
		cfg.InputPath = "/in/Host.dll"
		cfg.OutputDir = "/out"

		app, _ := newTestApp(cfg, Options{FileSystem: &mkdirFailFS{base}})
		assert.ErrorIs(t, app.Run(), ErrPrepareOutput)
	})

	t.Run("空のディレクトリでは出力先を作らない", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.Dirs["/in"] = true

		cfg := config.New()
		cfg.InputPath = "/in"
		cfg.OutputDir = "/out"

		app, out := newTestApp(cfg, Options{FileSystem: fs})
		require.NoError(t, app.Run())
		assert.False(t, fs.Dirs["/out"])
		assert.Empty(t, out.String())
	})
}

func TestNew(t *testing.T) {
	cfg := config.New()
	app := New(cfg)
	assert.NotNil(t, app.fs)
	assert.NotNil(t, app.loader)
	assert.NotNil(t, app.unpacker)
	assert.NotNil(t, app.Report())
}
