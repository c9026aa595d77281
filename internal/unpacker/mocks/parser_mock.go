package mocks

import (
	"github.com/shiroemons/go-libzunpack/pkg/clr"
)

// MockModuleParser はテスト用のModuleParserモック
type MockModuleParser struct {
	// ParseFunc が設定されていれば Parse はそれを呼び出します
	ParseFunc func(data []byte) (*clr.Module, error)
	// Calls は Parse に渡されたバイト列の長さを記録します
	Calls []int
}

// Parse はモジュールを解析します
func (m *MockModuleParser) Parse(data []byte) (*clr.Module, error) {
	m.Calls = append(m.Calls, len(data))
	if m.ParseFunc != nil {
		return m.ParseFunc(data)
	}
	return clr.Parse(data)
}
