// Package loader はファイルやメモリ上のバイト列をモジュールとして読み込みます
package loader

import (
	"errors"
	"fmt"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/config"
	uerrors "github.com/shiroemons/go-libzunpack/internal/unpacker/errors"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/fileutil"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/interfaces"
	"github.com/shiroemons/go-libzunpack/pkg/clr"
)

// ParserFunc は関数をModuleParserとして扱うためのアダプタ
type ParserFunc func(data []byte) (*clr.Module, error)

// Parse はモジュールを解析します
func (f ParserFunc) Parse(data []byte) (*clr.Module, error) {
	return f(data)
}

// Loader はモジュールの読み込みを行います
type Loader struct {
	fs     interfaces.FileSystem
	parser interfaces.ModuleParser
	logger interfaces.Logger
	debug  interfaces.Logger
}

// Options はLoaderの設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	Parser     interfaces.ModuleParser
	// Logger は読み込み失敗の診断メッセージの出力先
	Logger interfaces.Logger
	Debug  interfaces.Logger
}

// New は新しいLoaderを作成します
func New(opts Options) *Loader {
	l := &Loader{
		fs:     opts.FileSystem,
		parser: opts.Parser,
		logger: opts.Logger,
		debug:  opts.Debug,
	}
	if l.fs == nil {
		l.fs = fileutil.NewOSFileSystem()
	}
	if l.parser == nil {
		l.parser = ParserFunc(clr.Parse)
	}
	if l.logger == nil {
		l.logger = config.NewConsoleLogger(nil)
	}
	if l.debug == nil {
		l.debug = config.NewDebugLogger(false)
	}
	return l
}

// Load はファイルをモジュールとして読み込みます。
// 拡張子が .dll / .exe 以外の場合はファイルを読まずに ErrUnsupportedExtension を返します。
func (l *Loader) Load(path string) (*clr.Module, error) {
	if !fileutil.IsModuleFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, uerrors.NewModuleError(uerrors.OpLoad, path, err)
	}
	return l.LoadBytes(path, data)
}

// LoadBytes はメモリ上のバイト列をモジュールとして読み込みます。
// name は診断メッセージにのみ使われます。
func (l *Loader) LoadBytes(name string, data []byte) (*clr.Module, error) {
	mod, err := l.parser.Parse(data)
	if err != nil {
		return nil, uerrors.NewModuleError(uerrors.OpLoad, name, err)
	}
	l.debug.Printf("%s を読み込みました (名前: %q, バージョン: %s, カルチャ: %q, リソース数: %d)\n",
		name, mod.Name(), mod.Version(), mod.Culture(), len(mod.ResourceNames()))
	return mod, nil
}

// TryLoad はファイルの読み込みを試み、失敗した場合は診断メッセージを表示します。
// 拡張子で除外されたファイルについては何も表示しません。
func (l *Loader) TryLoad(path string) (*clr.Module, bool) {
	mod, err := l.Load(path)
	if err != nil {
		if errors.Is(err, ErrUnsupportedExtension) {
			l.debug.Printf("%s をスキップします: %v\n", path, err)
			return nil, false
		}
		l.report(path, err)
		return nil, false
	}
	return mod, true
}

// TryLoadBytes はバイト列の読み込みを試み、失敗した場合は診断メッセージを表示します
func (l *Loader) TryLoadBytes(name string, data []byte) (*clr.Module, bool) {
	mod, err := l.LoadBytes(name, data)
	if err != nil {
		l.report(name, err)
		return nil, false
	}
	return mod, true
}

func (l *Loader) report(name string, err error) {
	var me *uerrors.ModuleError
	if errors.As(err, &me) {
		err = me.Err
	}
	l.logger.Printf("Failed to load %s: %v\n", name, err)
}
