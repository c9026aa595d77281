// Package config はlibzunpackコマンドの設定管理を行います
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

const Version = "0.1.0"

// DefaultPlaceholderName は名前を宣言していないモジュールの出力名
const DefaultPlaceholderName = "UnknownAssembly"

// ErrLoadConfigFile は設定ファイルの読み込みに失敗した場合のエラー
var ErrLoadConfigFile = errors.New("設定ファイルの読み込みに失敗しました")

// Config はアプリケーションの設定を保持します
type Config struct {
	InputPath       string
	OutputDir       string
	Recursive       bool
	MaxDepth        int // 0 は無制限
	DryRun          bool
	DebugMode       bool
	ShowVersion     bool
	ConfigFile      string
	PlaceholderName string
}

// New はデフォルト値で設定を作成します
func New() *Config {
	return &Config{
		PlaceholderName: DefaultPlaceholderName,
	}
}

// BindFlags はフラグを設定値に関連付けます
func BindFlags(cfg *Config, flags *pflag.FlagSet) {
	flags.BoolVarP(&cfg.Recursive, "recursive", "r", false, "unpack assemblies recursively")
	flags.IntVar(&cfg.MaxDepth, "max-depth", 0, "limit recursion depth (0 means unlimited)")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "perform a dry run without writing output files")
	flags.BoolVarP(&cfg.DebugMode, "debug", "d", false, "enable debug output")
	flags.StringVarP(&cfg.ConfigFile, "config", "c", "", "path to TOML file with default settings")
	flags.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version information")
}

// FileConfig は設定ファイルの内容
type FileConfig struct {
	Recursive       *bool   `toml:"recursive"`
	MaxDepth        *int    `toml:"max_depth"`
	DryRun          *bool   `toml:"dry_run"`
	Debug           *bool   `toml:"debug"`
	PlaceholderName *string `toml:"placeholder_name"`
}

// LoadFile はTOML形式の設定ファイルを読み込みます
func LoadFile(path string) (*FileConfig, error) {
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfigFile, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: 不明なキー %v", ErrLoadConfigFile, path, undecoded)
	}
	return &fc, nil
}

// Apply は設定ファイルの値を反映します。
// コマンドラインで明示的に指定されたフラグは上書きしません。
func (c *Config) Apply(fc *FileConfig, flags *pflag.FlagSet) {
	if fc == nil {
		return
	}
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	if fc.Recursive != nil && !changed("recursive") {
		c.Recursive = *fc.Recursive
	}
	if fc.MaxDepth != nil && !changed("max-depth") {
		c.MaxDepth = *fc.MaxDepth
	}
	if fc.DryRun != nil && !changed("dry-run") {
		c.DryRun = *fc.DryRun
	}
	if fc.Debug != nil && !changed("debug") {
		c.DebugMode = *fc.Debug
	}
	if fc.PlaceholderName != nil && *fc.PlaceholderName != "" {
		c.PlaceholderName = *fc.PlaceholderName
	}
}

// Placeholder は空にならない出力名を返します
func (c *Config) Placeholder() string {
	if c.PlaceholderName == "" {
		return DefaultPlaceholderName
	}
	return c.PlaceholderName
}

// VersionString はバージョン表示用の文字列を返します
func VersionString() string {
	return fmt.Sprintf("libzunpack version %s", Version)
}

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	enabled bool
	out     io.Writer
}

// NewDebugLogger は新しいDebugLoggerを作成します
func NewDebugLogger(enabled bool) *DebugLogger {
	return &DebugLogger{enabled: enabled, out: os.Stdout}
}

// NewDebugLoggerTo は出力先を指定してDebugLoggerを作成します
func NewDebugLoggerTo(enabled bool, out io.Writer) *DebugLogger {
	return &DebugLogger{enabled: enabled, out: out}
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	if d.enabled {
		fmt.Fprintf(d.out, format, a...)
	}
}

// ConsoleLogger は進捗と診断メッセージを常に表示します
type ConsoleLogger struct {
	out io.Writer
}

// NewConsoleLogger は新しいConsoleLoggerを作成します
func NewConsoleLogger(out io.Writer) *ConsoleLogger {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleLogger{out: out}
}

// Printf はメッセージを表示します
func (c *ConsoleLogger) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}
