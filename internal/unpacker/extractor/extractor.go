// Package extractor はモジュールに埋め込まれたアセンブリを展開します
package extractor

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/config"
	uerrors "github.com/shiroemons/go-libzunpack/internal/unpacker/errors"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/fileutil"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/interfaces"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/loader"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/models"
	"github.com/shiroemons/go-libzunpack/pkg/asmz"
	"github.com/shiroemons/go-libzunpack/pkg/clr"
)

// Extractor は asmz:// リソースを展開して出力ディレクトリに書き出します
type Extractor struct {
	fs          interfaces.FileSystem
	loader      interfaces.ModuleLoader
	logger      interfaces.Logger
	debug       interfaces.Logger
	placeholder string
	maxDepth    int
	dryRun      bool
}

// Options はExtractorの設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	Loader     interfaces.ModuleLoader
	Logger     interfaces.Logger
	Debug      interfaces.Logger

	// PlaceholderName は名前のないモジュールの出力名（空なら UnknownAssembly）
	PlaceholderName string
	// MaxDepth は再帰の深さの上限（0 は無制限）
	MaxDepth int
	// DryRun が true の場合はファイルを書き込みません
	DryRun bool
}

// New は新しいExtractorを作成します
func New(opts Options) *Extractor {
	e := &Extractor{
		fs:          opts.FileSystem,
		loader:      opts.Loader,
		logger:      opts.Logger,
		debug:       opts.Debug,
		placeholder: opts.PlaceholderName,
		maxDepth:    opts.MaxDepth,
		dryRun:      opts.DryRun,
	}
	if e.fs == nil {
		e.fs = fileutil.NewOSFileSystem()
	}
	if e.logger == nil {
		e.logger = config.NewConsoleLogger(nil)
	}
	if e.debug == nil {
		e.debug = config.NewDebugLogger(false)
	}
	if e.loader == nil {
		e.loader = loader.New(loader.Options{
			FileSystem: e.fs,
			Logger:     e.logger,
			Debug:      e.debug,
		})
	}
	if e.placeholder == "" {
		e.placeholder = config.DefaultPlaceholderName
	}
	return e
}

// ExtractAll はモジュールの asmz:// リソースをすべて展開します。
// recursive が true の場合は展開したモジュールに対しても同じ処理を深さ優先で繰り返します。
// 個々のエントリの失敗は診断を表示してスキップし、処理全体は中断しません。
func (e *Extractor) ExtractAll(module *clr.Module, outputDir string, recursive bool) *models.Report {
	report := &models.Report{}
	e.extract(module, outputDir, recursive, 0, report)
	return report
}

func (e *Extractor) extract(module *clr.Module, outputDir string, recursive bool, depth int, report *models.Report) {
	for _, name := range module.ResourceNames() {
		if !asmz.IsQualified(name) {
			continue
		}

		outcome, inner := e.extractEntry(module, name, outputDir, depth)
		report.Add(outcome)

		if inner == nil || !recursive {
			continue
		}
		if e.maxDepth > 0 && depth+1 > e.maxDepth {
			e.debug.Printf("%s: 再帰の上限 %d に達したため展開しません\n", outcome.Identity, e.maxDepth)
			continue
		}
		e.extract(inner, outputDir, recursive, depth+1, report)
	}
}

// extractEntry はひとつのリソースを展開して書き出します。
// 書き出したペイロードのモジュールを返します（スキップした場合は nil）。
func (e *Extractor) extractEntry(module *clr.Module, name, outputDir string, depth int) (models.Outcome, *clr.Module) {
	outcome := models.Outcome{Resource: name, Depth: depth}

	rn, err := asmz.ParseName(name)
	if err != nil {
		outcome.Err = uerrors.NewResourceError(name, fmt.Errorf("%w: %w", uerrors.ErrMalformedResourceName, err))
		e.logger.Printf("Skipping resource '%s': malformed name.\n", name)
		return outcome, nil
	}

	data, err := e.readPayload(module, rn)
	if err != nil {
		outcome.Err = uerrors.NewResourceError(name, err)
		if errors.Is(err, uerrors.ErrResourceStreamMissing) {
			e.logger.Printf("Resource '%s' not found.\n", name)
		} else {
			e.logger.Printf("Skipping resource '%s': %v\n", name, err)
		}
		return outcome, nil
	}
	e.debug.Printf("%s: %d バイト (圧縮: %t)\n", name, len(data), rn.Compressed())

	// 名前を得るためにペイロードをモジュールとして読み込む
	inner, ok := e.loader.TryLoadBytes(name, data)
	if !ok {
		outcome.Err = uerrors.NewResourceError(name, uerrors.ErrLoadFailure)
		return outcome, nil
	}

	identity := inner.Name()
	if identity == "" {
		e.debug.Printf("%s: %v、%s として保存します\n", name, uerrors.ErrUnnamedModule, e.placeholder)
		identity = e.placeholder
	}
	fileName := fileutil.OutputFileName(identity, e.placeholder)
	outcome.Identity = identity
	outcome.Path = filepath.Join(outputDir, fileName)

	if e.dryRun {
		e.logger.Printf("Saving %s (dry run)\n", fileName)
		return outcome, inner
	}

	e.logger.Printf("Saving %s\n", fileName)
	if err := fileutil.WriteModule(e.fs, outcome.Path, data); err != nil {
		outcome.Err = uerrors.NewResourceError(name, err)
		e.logger.Printf("Failed to save %s: %v\n", fileName, err)
		return outcome, nil
	}
	return outcome, inner
}

// readPayload はリソースストリームを開いて最後まで読み込みます。
// ストリームは次のエントリに進む前に閉じられます。
func (e *Extractor) readPayload(module *clr.Module, rn asmz.Name) ([]byte, error) {
	rc, err := module.OpenResource(rn.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", uerrors.ErrResourceStreamMissing, err)
	}
	defer rc.Close()

	return asmz.Decode(rc, rn.Compressed())
}
