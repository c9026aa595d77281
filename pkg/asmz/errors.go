package asmz

import "errors"

var (
	// ErrNotQualified はリソース名が asmz:// で始まらない場合のエラー
	ErrNotQualified = errors.New("埋め込みアセンブリのリソース名ではありません")

	// ErrMalformedName はリソース名のセグメントが不足している場合のエラー
	ErrMalformedName = errors.New("リソース名の形式が不正です")

	// ErrReadPayload はペイロードの読み込みに失敗した場合のエラー
	ErrReadPayload = errors.New("ペイロードの読み込みに失敗しました")

	// ErrDecompress はペイロードの展開に失敗した場合のエラー
	ErrDecompress = errors.New("ペイロードの展開に失敗しました")
)
