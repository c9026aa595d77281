package clr

import "errors"

var (
	// ErrNotPE はPEファイルとして解析できない場合のエラー
	ErrNotPE = errors.New("PEファイルではありません")

	// ErrNoCLIHeader はCLIヘッダを持たない（.NETモジュールではない）場合のエラー
	ErrNoCLIHeader = errors.New("CLIヘッダがありません")

	// ErrBadMetadata はメタデータが破損している場合のエラー
	ErrBadMetadata = errors.New("メタデータが破損しています")

	// ErrBadResource はリソースディレクトリが破損している場合のエラー
	ErrBadResource = errors.New("リソースデータが破損しています")

	// ErrResourceNotFound は指定された名前のリソースが存在しない場合のエラー
	ErrResourceNotFound = errors.New("リソースが見つかりません")

	// ErrResourceNotEmbedded はリソースが外部ファイルへのリンクである場合のエラー
	ErrResourceNotEmbedded = errors.New("リソースはこのモジュールに埋め込まれていません")
)
