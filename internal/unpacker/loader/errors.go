package loader

import "errors"

// ErrUnsupportedExtension は拡張子が .dll / .exe ではない場合のエラー
var ErrUnsupportedExtension = errors.New("モジュールの拡張子ではありません")
