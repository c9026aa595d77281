package clr

import (
	"fmt"

	"github.com/saferwall/pe/log"
)

// diagnostics は pe パッケージの警告を記録する log.Logger です。
// メタデータテーブルの読み込み失敗はエラーとして返されず警告として
// 出力されるだけなので、ここで拾って破損として扱います。
type diagnostics struct {
	warnings []string
}

// Log は警告レベルのメッセージだけを記録します
func (d *diagnostics) Log(level log.Level, keyvals ...interface{}) error {
	if level != log.LevelWarn {
		return nil
	}
	// Helper は (msgKey, message) の組で渡してくる
	if len(keyvals) > 0 {
		d.warnings = append(d.warnings, fmt.Sprint(keyvals[len(keyvals)-1]))
	}
	return nil
}

func (d *diagnostics) first() (string, bool) {
	if len(d.warnings) == 0 {
		return "", false
	}
	return d.warnings[0], true
}
