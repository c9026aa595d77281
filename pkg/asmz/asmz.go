// Package asmz はアセンブリパッカーが埋め込むリソースの命名規約とペイロード形式を扱います。
//
// パックされたアセンブリは次の形式の名前を持つマニフェストリソースとして格納されます:
//
//	asmz://<namespace>/<resource-id>/<flags>
//
// flags に 'z' が含まれる場合、ペイロードは長さ情報を持たない生の deflate ストリームです。
// それ以外の文字は現在使われておらず、無視されます。
package asmz

import (
	"fmt"
	"strings"
)

const (
	// Scheme は埋め込みアセンブリを示すリソース名の接頭辞
	Scheme = "asmz://"

	// CompressionFlag はペイロードが deflate 圧縮されていることを示すフラグ文字
	CompressionFlag = 'z'

	// nameSegments はスキーム以降に必要なセグメント数
	nameSegments = 3
)

// Name は解析済みのリソース名を表します
type Name struct {
	Raw        string
	Namespace  string
	ResourceID string
	Flags      string
}

// IsQualified はリソース名が埋め込みアセンブリの命名規約に従っているかを返します
func IsQualified(name string) bool {
	return strings.HasPrefix(name, Scheme)
}

// ParseName はリソース名を namespace, resource-id, flags に分解します。
// セグメントが3つに満たない名前は ErrMalformedName を返します。
// 4つ以上ある場合は3番目を flags として扱います。
func ParseName(raw string) (Name, error) {
	if !IsQualified(raw) {
		return Name{}, fmt.Errorf("%w: %s", ErrNotQualified, raw)
	}

	segments := strings.Split(strings.TrimPrefix(raw, Scheme), "/")
	if len(segments) < nameSegments {
		return Name{}, fmt.Errorf("%w: %s (セグメント数 %d)", ErrMalformedName, raw, len(segments))
	}

	return Name{
		Raw:        raw,
		Namespace:  segments[0],
		ResourceID: segments[1],
		Flags:      segments[2],
	}, nil
}

// Compressed はペイロードが deflate 圧縮されているかを返します
func (n Name) Compressed() bool {
	return strings.ContainsRune(n.Flags, CompressionFlag)
}

// String は元のリソース名を返します
func (n Name) String() string {
	return n.Raw
}

// FormatName は命名規約に従ったリソース名を組み立てます
func FormatName(namespace, resourceID string, compressed bool) string {
	flags := ""
	if compressed {
		flags = string(CompressionFlag)
	}
	return Scheme + namespace + "/" + resourceID + "/" + flags
}
