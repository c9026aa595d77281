// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/config"
	uerrors "github.com/shiroemons/go-libzunpack/internal/unpacker/errors"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/extractor"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/fileutil"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/interfaces"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/loader"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/models"
	"github.com/shiroemons/go-libzunpack/pkg/clr"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config   *config.Config
	logger   interfaces.Logger
	debug    *config.DebugLogger
	fs       interfaces.FileSystem
	loader   interfaces.ModuleLoader
	unpacker interfaces.Unpacker
	report   *models.Report
}

// Options はAppの設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	Loader     interfaces.ModuleLoader
	Unpacker   interfaces.Unpacker
	// Stdout は進捗と診断メッセージの出力先（nil なら os.Stdout）
	Stdout io.Writer
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := config.NewConsoleLogger(stdout)
	debug := config.NewDebugLoggerTo(cfg.DebugMode, stdout)

	// デフォルトのファイルシステムを設定
	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}

	ldr := opts.Loader
	if ldr == nil {
		ldr = loader.New(loader.Options{
			FileSystem: fs,
			Logger:     logger,
			Debug:      debug,
		})
	}

	unpacker := opts.Unpacker
	if unpacker == nil {
		unpacker = extractor.New(extractor.Options{
			FileSystem:      fs,
			Loader:          ldr,
			Logger:          logger,
			Debug:           debug,
			PlaceholderName: cfg.Placeholder(),
			MaxDepth:        cfg.MaxDepth,
			DryRun:          cfg.DryRun,
		})
	}

	return &App{
		config:   cfg,
		logger:   logger,
		debug:    debug,
		fs:       fs,
		loader:   ldr,
		unpacker: unpacker,
		report:   &models.Report{},
	}
}

// Run はアプリケーションを実行します。
// 入力パスがディレクトリでもモジュールでもない場合は診断を表示して正常終了します。
func (a *App) Run() error {
	path := a.config.InputPath

	info, err := a.fs.Stat(path)
	if err == nil && info.IsDir() {
		err = a.runDirectory(path)
	} else {
		err = a.runFile(path)
	}
	if err != nil {
		if errors.Is(err, uerrors.ErrInvalidInputPath) {
			a.logger.Printf("%s is neither a directory nor a valid assembly.\n", path)
			return nil
		}
		return err
	}

	a.debug.Printf("書き出し %d 件、スキップ %d 件\n", len(a.report.Written()), len(a.report.Skipped()))
	return nil
}

// Report はこれまでの実行結果を返します
func (a *App) Report() *models.Report {
	return a.report
}

// runFile は単一のモジュールファイルを処理します
func (a *App) runFile(path string) error {
	mod, ok := a.loader.TryLoad(path)
	if !ok {
		return fmt.Errorf("%w: %s", uerrors.ErrInvalidInputPath, path)
	}
	if err := a.prepareOutput(); err != nil {
		return err
	}
	a.extract(mod)
	return nil
}

// runDirectory はディレクトリ直下のモジュールファイルを順に処理します。
// 読み込めなかったファイルは飛ばして残りのファイルを続けます。
func (a *App) runDirectory(dir string) error {
	files, err := fileutil.ListModuleFiles(a.fs, dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListInput, err)
	}
	a.debug.Printf("%s: %d 個のモジュール候補\n", dir, len(files))

	prepared := false
	for _, f := range files {
		mod, ok := a.loader.TryLoad(f)
		if !ok {
			continue
		}
		if !prepared {
			if err := a.prepareOutput(); err != nil {
				return err
			}
			prepared = true
		}
		a.extract(mod)
	}
	return nil
}

func (a *App) prepareOutput() error {
	if a.config.DryRun {
		return nil
	}
	if err := fileutil.EnsureDir(a.fs, a.config.OutputDir); err != nil {
		return fmt.Errorf("%w: %w", ErrPrepareOutput, err)
	}
	return nil
}

func (a *App) extract(mod *clr.Module) {
	a.debug.Printf("%s のリソースを展開します\n", mod.Name())
	a.report.Merge(a.unpacker.ExtractAll(mod, a.config.OutputDir, a.config.Recursive))
}
