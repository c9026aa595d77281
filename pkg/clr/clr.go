// Package clr は.NETアセンブリ（ECMA-335 モジュール）を読み込むためのパッケージです。
//
// PE/COFF コンテナとメタデータの解析は github.com/saferwall/pe に任せ、
// アセンブリ自身が宣言する名前（Assembly テーブルの Name）と
// マニフェストリソースを取り出します。実行やリンクは行いません。
//
// 基本的な使い方:
//
//	mod, err := clr.Parse(data)
//	if err != nil {
//	    return err
//	}
//	for _, name := range mod.ResourceNames() {
//	    rc, err := mod.OpenResource(name)
//	    if err != nil {
//	        continue
//	    }
//	    // リソースを処理...
//	    rc.Close()
//	}
package clr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/saferwall/pe"
)

// metadataSignature はメタデータルートの先頭にある "BSJB"
const metadataSignature = 0x424A5342

// Version はアセンブリのバージョンを表します
type Version struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

// String は "1.2.3.4" 形式の文字列を返します
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

type resource struct {
	name   string
	offset uint32
	// false の場合は別ファイルや別アセンブリへのリンク
	embedded bool
}

// Module は読み込まれた.NETモジュールを表します
type Module struct {
	name         string
	culture      string
	version      Version
	resources    []resource
	resourceData []byte
	resourceErr  error
}

// Parse はバイト列を.NETモジュールとして解析します
func Parse(data []byte) (mod *Module, err error) {
	// 壊れた入力でライブラリ内部が panic した場合もエラーとして扱う
	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = fmt.Errorf("%w: %v", ErrBadMetadata, r)
		}
	}()

	diag := &diagnostics{}
	f, err := pe.NewBytes(data, newOptions(diag))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotPE, err)
	}
	// NewBytes で作った File の Close は呼び出し側のスライスを munmap するため呼ばない

	if err := f.Parse(); err != nil {
		if f.HasCLR {
			return nil, fmt.Errorf("%w: %w", ErrBadMetadata, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrNotPE, err)
	}
	if !f.HasCLR {
		return nil, ErrNoCLIHeader
	}
	if err := checkMetadata(f, diag); err != nil {
		return nil, err
	}

	strs := f.CLR.MetadataStreams["#Strings"]
	mod = &Module{}

	if rows, ok := tableRows[pe.AssemblyTableRow](f, pe.Assembly); ok && len(rows) > 0 {
		row := rows[0]
		mod.version = Version{
			Major:    row.MajorVersion,
			Minor:    row.MinorVersion,
			Build:    row.BuildNumber,
			Revision: row.RevisionNumber,
		}
		if mod.name, err = heapString(f, strs, row.Name); err != nil {
			return nil, err
		}
		if mod.culture, err = heapString(f, strs, row.Culture); err != nil {
			return nil, err
		}
	}

	rows, _ := tableRows[pe.ManifestResourceTableRow](f, pe.ManifestResource)
	mod.resources = make([]resource, 0, len(rows))
	for _, row := range rows {
		name, err := heapString(f, strs, row.Name)
		if err != nil {
			return nil, err
		}
		mod.resources = append(mod.resources, resource{
			name:     name,
			offset:   row.Offset,
			embedded: row.Implementation == 0,
		})
	}

	// リソースディレクトリの破損はモジュール全体の読み込み失敗とはせず、
	// リソースを開く時点で報告する
	if dir := f.CLR.CLRHeader.Resources; dir.VirtualAddress != 0 {
		mod.resourceData, mod.resourceErr = resourceDirectory(f, dir)
	}

	return mod, nil
}

// newOptions は CLI ヘッダ以外のデータディレクトリを読み飛ばす設定を返します
func newOptions(diag *diagnostics) *pe.Options {
	return &pe.Options{
		DisableCertValidation:      true,
		DisableSignatureValidation: true,
		Logger:                     diag,
		OmitExportDirectory:        true,
		OmitImportDirectory:        true,
		OmitExceptionDirectory:     true,
		OmitResourceDirectory:      true,
		OmitSecurityDirectory:      true,
		OmitRelocDirectory:         true,
		OmitDebugDirectory:         true,
		OmitArchitectureDirectory:  true,
		OmitGlobalPtrDirectory:     true,
		OmitTLSDirectory:           true,
		OmitLoadConfigDirectory:    true,
		OmitBoundImportDirectory:   true,
		OmitIATDirectory:           true,
		OmitDelayImportDirectory:   true,
	}
}

// checkMetadata はライブラリがエラーを返さずに読み進めた破損を検出します
func checkMetadata(f *pe.File, diag *diagnostics) error {
	if msg, ok := diag.first(); ok {
		return fmt.Errorf("%w: %s", ErrBadMetadata, msg)
	}
	if f.CLR.MetadataHeader.Signature != metadataSignature {
		return fmt.Errorf("%w: シグネチャ 0x%08x", ErrBadMetadata, f.CLR.MetadataHeader.Signature)
	}
	streams := f.CLR.MetadataStreams
	if len(streams["#~"]) == 0 && len(streams["#-"]) == 0 {
		return fmt.Errorf("%w: テーブルストリームがありません", ErrBadMetadata)
	}
	if f.CLR.MetadataTables == nil {
		return fmt.Errorf("%w: テーブルを読み込めません", ErrBadMetadata)
	}
	return nil
}

// tableRows はメタデータテーブルの行を型付きで返します
func tableRows[T any](f *pe.File, index int) ([]T, bool) {
	table, ok := f.CLR.MetadataTables[index]
	if !ok || table == nil {
		return nil, false
	}
	rows, ok := table.Content.([]T)
	return rows, ok
}

// heapString は #Strings ヒープのインデックスを文字列に変換します
func heapString(f *pe.File, heap []byte, index uint32) (string, error) {
	if index == 0 {
		return "", nil
	}
	if uint64(index) >= uint64(len(heap)) {
		return "", fmt.Errorf("%w: 文字列インデックス 0x%x が範囲外です", ErrBadMetadata, index)
	}
	return string(f.GetStringFromData(index, heap)), nil
}

// resourceDirectory は CLI ヘッダが指すリソース領域を読み出します
func resourceDirectory(f *pe.File, dir pe.ImageDataDirectory) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrBadResource, r)
		}
	}()

	data, err = f.GetData(dir.VirtualAddress, dir.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResource, err)
	}
	if uint64(len(data)) < uint64(dir.Size) {
		return nil, fmt.Errorf("%w: RVA 0x%x サイズ 0x%x が範囲外です", ErrBadResource, dir.VirtualAddress, dir.Size)
	}
	return data, nil
}

// Name はアセンブリが宣言する名前を返します。
// Assembly テーブルを持たないモジュールでは空文字列です。
func (m *Module) Name() string {
	return m.name
}

// Version はアセンブリのバージョンを返します
func (m *Module) Version() Version {
	return m.version
}

// Culture はアセンブリのカルチャを返します
func (m *Module) Culture() string {
	return m.culture
}

// ResourceNames はマニフェストリソース名の一覧をメタデータ上の順序で返します
func (m *Module) ResourceNames() []string {
	names := make([]string, len(m.resources))
	for i, r := range m.resources {
		names[i] = r.name
	}
	return names
}

// OpenResource は指定された名前のリソース本体を読み出すストリームを返します
func (m *Module) OpenResource(name string) (io.ReadCloser, error) {
	var res *resource
	for i := range m.resources {
		if m.resources[i].name == name {
			res = &m.resources[i]
			break
		}
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	if !res.embedded {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotEmbedded, name)
	}
	if m.resourceErr != nil {
		return nil, m.resourceErr
	}

	// 各リソースは 4 バイトの長さに続いて本体が格納される
	start := uint64(res.offset)
	if start+4 > uint64(len(m.resourceData)) {
		return nil, fmt.Errorf("%w: %s: オフセット 0x%x が範囲外です", ErrBadResource, name, res.offset)
	}
	size := uint64(binary.LittleEndian.Uint32(m.resourceData[start:]))
	end := start + 4 + size
	if end > uint64(len(m.resourceData)) {
		return nil, fmt.Errorf("%w: %s: サイズ %d が範囲外です", ErrBadResource, name, size)
	}

	return io.NopCloser(bytes.NewReader(m.resourceData[start+4 : end])), nil
}
