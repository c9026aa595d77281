// Package fileutil はファイル操作のユーティリティ関数を提供します
package fileutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/interfaces"
)

// OutputExtension は展開したモジュールの拡張子
const OutputExtension = ".dll"

// モジュールとして扱う拡張子
var moduleExtensions = []string{".dll", ".exe"}

// IsModuleFile は拡張子からモジュールファイルかどうかを判定します（大文字小文字を区別しない）
func IsModuleFile(path string) bool {
	ext := cases.Fold().String(filepath.Ext(path))
	for _, e := range moduleExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// OutputFileName はモジュール名から出力ファイル名を生成します。
// 名前が空の場合は placeholder を使います。
func OutputFileName(identity, placeholder string) string {
	name := strings.TrimSpace(norm.NFC.String(identity))
	if name == "" {
		name = placeholder
	}
	// 出力ディレクトリ直下に書き出すため区切り文字を置き換える
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return name + OutputExtension
}

// ListModuleFiles はディレクトリ直下のモジュールファイルを名前順で返します
func ListModuleFiles(fs interfaces.FileSystem, dir string) ([]string, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDirectory, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsModuleFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// EnsureDir は出力先ディレクトリを作成します
func EnsureDir(fs interfaces.FileSystem, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateDirectory, err)
	}
	return nil
}

// WriteModule は展開したモジュールを書き込みます
func WriteModule(fs interfaces.FileSystem, path string, data []byte) error {
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteModule, err)
	}
	return nil
}
