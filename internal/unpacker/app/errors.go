package app

import "errors"

var (
	// ErrPrepareOutput は出力先ディレクトリを用意できなかった場合のエラー
	ErrPrepareOutput = errors.New("出力先ディレクトリを用意できませんでした")

	// ErrListInput は入力ディレクトリを走査できなかった場合のエラー
	ErrListInput = errors.New("入力ディレクトリを走査できませんでした")
)
