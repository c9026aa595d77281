// Package interfaces はlibzunpackコマンドで使用するインターフェースを定義します
package interfaces

import (
	"github.com/shiroemons/go-libzunpack/internal/unpacker/models"
	"github.com/shiroemons/go-libzunpack/pkg/clr"
)

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	ReadFile(filename string) ([]byte, error)
	WriteFile(filename string, data []byte, perm uint32) error
	MkdirAll(path string, perm uint32) error
	Stat(name string) (FileInfo, error)
	ReadDir(dirname string) ([]DirEntry, error)
}

// FileInfo はファイル情報のインターフェース
type FileInfo interface {
	Name() string
	IsDir() bool
}

// DirEntry はディレクトリエントリのインターフェース
type DirEntry interface {
	Name() string
	IsDir() bool
}

// ModuleParser はバイト列をモジュールとして解析するインターフェース
type ModuleParser interface {
	Parse(data []byte) (*clr.Module, error)
}

// ModuleLoader はファイルまたはメモリ上のバイト列からモジュールを読み込むインターフェース
type ModuleLoader interface {
	TryLoad(path string) (*clr.Module, bool)
	TryLoadBytes(name string, data []byte) (*clr.Module, bool)
}

// Unpacker は読み込んだモジュールから埋め込みアセンブリを展開するインターフェース
type Unpacker interface {
	ExtractAll(module *clr.Module, outputDir string, recursive bool) *models.Report
}

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}
