// Package models はlibzunpackコマンドで使用するデータモデルを定義します
package models

// Outcome はひとつのリソースエントリの処理結果を表します
type Outcome struct {
	Resource string // マニフェストリソース名
	Depth    int    // 再帰の深さ（ルートモジュールが0）
	Identity string // 展開したモジュールの名前
	Path     string // 出力先パス（ドライランでも設定される）
	Err      error  // スキップした理由
}

// Skipped はエントリがスキップされたかどうかを返します
func (o Outcome) Skipped() bool {
	return o.Err != nil
}

// Report はひとつの展開処理で得られた結果の一覧
type Report struct {
	Outcomes []Outcome
}

// Add は結果を追加します
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Merge は別のレポートの結果を末尾に追加します
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Outcomes = append(r.Outcomes, other.Outcomes...)
}

// Written は書き出しに成功した結果だけを返します
func (r *Report) Written() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Skipped() {
			out = append(out, o)
		}
	}
	return out
}

// Skipped はスキップされた結果だけを返します
func (r *Report) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Skipped() {
			out = append(out, o)
		}
	}
	return out
}
