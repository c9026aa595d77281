package fileutil

import (
	"os"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/interfaces"
)

// OSFileSystem は interfaces.FileSystem を os パッケージで満たします。
// 入力アセンブリの列挙と読み込み、抽出結果の書き出しに使われます。
type OSFileSystem struct{}

// NewOSFileSystem は新しいOSFileSystemを作成します
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (*OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// WriteFile は抽出したモジュールを書き出します。同名のファイルは上書きされます。
func (*OSFileSystem) WriteFile(name string, data []byte, perm uint32) error {
	return os.WriteFile(name, data, os.FileMode(perm))
}

func (*OSFileSystem) MkdirAll(path string, perm uint32) error {
	return os.MkdirAll(path, os.FileMode(perm))
}

// Stat は入力パスがディレクトリかどうかの判定に使われます
func (*OSFileSystem) Stat(name string) (interfaces.FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		// nil の *os.fileStat を interface に包まない
		return nil, err
	}
	return info, nil
}

// ReadDir は dirname 直下のエントリを名前順で返します
func (*OSFileSystem) ReadDir(dirname string) ([]interfaces.DirEntry, error) {
	entries, err := os.ReadDir(dirname)
	result := make([]interfaces.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, err
}
