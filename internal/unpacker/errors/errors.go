// Package errors はアンパッカー全体で使うエラーの分類を提供します
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidInputPath は入力パスがディレクトリでも読み込み可能なモジュールでもない場合のエラー
	ErrInvalidInputPath = errors.New("ディレクトリでも有効なアセンブリでもありません")

	// ErrLoadFailure はファイルをモジュールとして読み込めなかった場合のエラー
	ErrLoadFailure = errors.New("モジュールの読み込みに失敗しました")

	// ErrResourceStreamMissing はリソース名は列挙されたがストリームを開けなかった場合のエラー
	ErrResourceStreamMissing = errors.New("リソースが見つかりません")

	// ErrMalformedResourceName はリソース名のセグメントが不足している場合のエラー
	ErrMalformedResourceName = errors.New("リソース名の形式が不正です")

	// ErrUnnamedModule は抽出したモジュールが名前を宣言していない場合のエラー
	ErrUnnamedModule = errors.New("モジュールに名前がありません")
)

// ModuleError はモジュール単位の処理で発生したエラー
type ModuleError struct {
	Op   string // 実行していた操作
	Path string // ファイルパス
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ModuleError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ModuleError) Unwrap() error {
	return e.Err
}

// Is はモジュールエラーを ErrLoadFailure として扱えるようにします
func (e *ModuleError) Is(target error) bool {
	return target == ErrLoadFailure && e.Op == OpLoad
}

// OpLoad はモジュール読み込み操作を示します
const OpLoad = "load"

// NewModuleError は新しいModuleErrorを作成します
func NewModuleError(op, path string, err error) *ModuleError {
	return &ModuleError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// ResourceError はリソースエントリ単位の処理で発生したエラー
type ResourceError struct {
	Resource string // リソース名
	Err      error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ResourceError) Error() string {
	return fmt.Sprintf("リソース '%s': %v", e.Resource, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError は新しいResourceErrorを作成します
func NewResourceError(resource string, err error) *ResourceError {
	return &ResourceError{
		Resource: resource,
		Err:      err,
	}
}
