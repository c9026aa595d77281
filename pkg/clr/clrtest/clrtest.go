// Package clrtest はテスト用に最小構成の.NETアセンブリを生成します。
//
// 生成されるのは単一の .text セクションに CLI ヘッダ、リソース、メタデータを
// 並べただけの PE ファイルで、コードは含みません。clr.Parse で読み込める
// ことだけを目的としています。
package clrtest

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
)

// Resource は生成するアセンブリに含めるマニフェストリソース
type Resource struct {
	Name string
	Data []byte
	// Linked が true の場合、本体を埋め込まず File テーブルへのリンクとして記録します
	Linked bool
}

// Assembly は生成するアセンブリの内容
type Assembly struct {
	// Name が空の場合は Assembly テーブルを出力しません（マニフェストを持たないモジュール）
	Name      string
	Culture   string
	Version   [4]uint16
	Resources []Resource
	// PE32Plus が true の場合は PE32+ のオプショナルヘッダを出力します
	PE32Plus bool
	// NoCLIHeader が true の場合は CLI ヘッダを持たないネイティブPEを出力します
	NoCLIHeader bool
}

// レイアウト定数
const (
	peHeaderOffset   = 0x80
	fileAlignment    = 0x200
	sectionAlignment = 0x2000
	textRVA          = 0x2000
	cliHeaderSize    = 72
	runtimeVersion   = "v4.0.30319"
)

// Build はアセンブリを PE ファイルのバイト列として生成します
func Build(a Assembly) []byte {
	text := a.text()

	var buf bytes.Buffer
	le := binary.LittleEndian

	// DOS ヘッダ
	dos := make([]byte, peHeaderOffset)
	dos[0], dos[1] = 'M', 'Z'
	le.PutUint32(dos[0x3C:], peHeaderOffset)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	ohSize := binary.Size(pe.OptionalHeader32{})
	machine := uint16(pe.IMAGE_FILE_MACHINE_I386)
	characteristics := uint16(pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_DLL | pe.IMAGE_FILE_32BIT_MACHINE)
	if a.PE32Plus {
		ohSize = binary.Size(pe.OptionalHeader64{})
		machine = pe.IMAGE_FILE_MACHINE_AMD64
		characteristics = uint16(pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_DLL | pe.IMAGE_FILE_LARGE_ADDRESS_AWARE)
	}

	write(&buf, pe.FileHeader{
		Machine:              machine,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(ohSize),
		Characteristics:      characteristics,
	})

	rawSize := align(uint32(len(text)), fileAlignment)
	imageSize := align(textRVA+uint32(len(text)), sectionAlignment)
	var cli pe.DataDirectory
	if !a.NoCLIHeader {
		cli = pe.DataDirectory{VirtualAddress: textRVA, Size: cliHeaderSize}
	}

	if a.PE32Plus {
		oh := pe.OptionalHeader64{
			Magic:                 0x20b,
			SizeOfCode:            rawSize,
			BaseOfCode:            textRVA,
			ImageBase:             0x180000000,
			SectionAlignment:      sectionAlignment,
			FileAlignment:         fileAlignment,
			MajorSubsystemVersion: 6,
			SizeOfImage:           imageSize,
			SizeOfHeaders:         fileAlignment,
			Subsystem:             pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
			NumberOfRvaAndSizes:   16,
		}
		oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR] = cli
		write(&buf, oh)
	} else {
		oh := pe.OptionalHeader32{
			Magic:                 0x10b,
			SizeOfCode:            rawSize,
			BaseOfCode:            textRVA,
			ImageBase:             0x400000,
			SectionAlignment:      sectionAlignment,
			FileAlignment:         fileAlignment,
			MajorSubsystemVersion: 4,
			SizeOfImage:           imageSize,
			SizeOfHeaders:         fileAlignment,
			Subsystem:             pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
			NumberOfRvaAndSizes:   16,
		}
		oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR] = cli
		write(&buf, oh)
	}

	sh := pe.SectionHeader32{
		VirtualSize:      uint32(len(text)),
		VirtualAddress:   textRVA,
		SizeOfRawData:    rawSize,
		PointerToRawData: fileAlignment,
		Characteristics:  pe.IMAGE_SCN_CNT_CODE | pe.IMAGE_SCN_MEM_EXECUTE | pe.IMAGE_SCN_MEM_READ,
	}
	copy(sh.Name[:], ".text")
	write(&buf, sh)

	pad(&buf, fileAlignment)
	buf.Write(text)
	pad(&buf, fileAlignment)
	return buf.Bytes()
}

// text は .text セクションの内容（CLI ヘッダ、リソース、メタデータ）を組み立てます
func (a Assembly) text() []byte {
	le := binary.LittleEndian

	var res bytes.Buffer
	offsets := make([]uint32, len(a.Resources))
	for i, r := range a.Resources {
		if r.Linked {
			continue
		}
		offsets[i] = uint32(res.Len())
		var n [4]byte
		le.PutUint32(n[:], uint32(len(r.Data)))
		res.Write(n[:])
		res.Write(r.Data)
		pad(&res, 8)
	}

	resOffset := uint32(cliHeaderSize)
	mdOffset := align(resOffset+uint32(res.Len()), 4)
	md := a.metadata(offsets)

	hdr := make([]byte, cliHeaderSize)
	le.PutUint32(hdr[0:], cliHeaderSize)
	le.PutUint16(hdr[4:], 2)
	le.PutUint16(hdr[6:], 5)
	le.PutUint32(hdr[8:], textRVA+mdOffset)
	le.PutUint32(hdr[12:], uint32(len(md)))
	le.PutUint32(hdr[16:], 1) // COMIMAGE_FLAGS_ILONLY
	if res.Len() > 0 {
		le.PutUint32(hdr[24:], textRVA+resOffset)
		le.PutUint32(hdr[28:], uint32(res.Len()))
	}

	var text bytes.Buffer
	text.Write(hdr)
	text.Write(res.Bytes())
	pad(&text, 4)
	text.Write(md)
	return text.Bytes()
}

// metadata はメタデータルートと各ストリームを組み立てます
func (a Assembly) metadata(resOffsets []uint32) []byte {
	strs := newStringHeap()
	guids := make([]byte, 16)
	for i := range guids {
		guids[i] = byte(i + 1)
	}
	blobs := []byte{0}

	hasLinked := false
	for _, r := range a.Resources {
		if r.Linked {
			hasLinked = true
		}
	}

	moduleName := a.Name + ".dll"
	if a.Name == "" {
		moduleName = "module.netmodule"
	}

	// 各テーブルの行を組み立てる前に文字列をすべて登録し、ヒープ幅を確定させる
	moduleNameIdx := strs.add(moduleName)
	nameIdx := strs.add(a.Name)
	cultureIdx := strs.add(a.Culture)
	resNameIdx := make([]uint32, len(a.Resources))
	for i, r := range a.Resources {
		resNameIdx[i] = strs.add(r.Name)
	}
	linkedIdx := strs.add("linked.resources")

	wideStrings := len(strs.data) > 0xFFFF
	var heapSizes byte
	if wideStrings {
		heapSizes |= 0x01
	}
	putStr := func(b *bytes.Buffer, v uint32) {
		if wideStrings {
			write(b, v)
		} else {
			write(b, uint16(v))
		}
	}

	type table struct {
		id   int
		rows int
		data bytes.Buffer
	}
	var tables []*table

	module := &table{id: 0x00, rows: 1}
	write(&module.data, uint16(0))
	putStr(&module.data, moduleNameIdx)
	write(&module.data, uint16(1)) // Mvid
	write(&module.data, uint16(0))
	write(&module.data, uint16(0))
	tables = append(tables, module)

	if a.Name != "" {
		asm := &table{id: 0x20, rows: 1}
		write(&asm.data, uint32(0x8004)) // SHA1
		for _, v := range a.Version {
			write(&asm.data, v)
		}
		write(&asm.data, uint32(0))
		write(&asm.data, uint16(0)) // PublicKey
		putStr(&asm.data, nameIdx)
		putStr(&asm.data, cultureIdx)
		tables = append(tables, asm)
	}

	if hasLinked {
		file := &table{id: 0x26, rows: 1}
		write(&file.data, uint32(1)) // ContainsNoMetaData
		putStr(&file.data, linkedIdx)
		write(&file.data, uint16(0))
		tables = append(tables, file)
	}

	if len(a.Resources) > 0 {
		mr := &table{id: 0x28, rows: len(a.Resources)}
		for i, r := range a.Resources {
			write(&mr.data, resOffsets[i])
			write(&mr.data, uint32(1)) // Public
			putStr(&mr.data, resNameIdx[i])
			if r.Linked {
				// Implementation: File テーブルの1行目（タグ 0）
				write(&mr.data, uint16(1<<2))
			} else {
				write(&mr.data, uint16(0))
			}
		}
		tables = append(tables, mr)
	}

	var valid uint64
	for _, t := range tables {
		valid |= 1 << uint(t.id)
	}

	var ts bytes.Buffer
	write(&ts, uint32(0))
	ts.WriteByte(2)
	ts.WriteByte(0)
	ts.WriteByte(heapSizes)
	ts.WriteByte(1)
	write(&ts, valid)
	write(&ts, uint64(0))
	for _, t := range tables {
		write(&ts, uint32(t.rows))
	}
	for _, t := range tables {
		ts.Write(t.data.Bytes())
	}
	pad(&ts, 4)

	strData := append([]byte(nil), strs.data...)
	for len(strData)%4 != 0 {
		strData = append(strData, 0)
	}
	blobData := append([]byte(nil), blobs...)
	for len(blobData)%4 != 0 {
		blobData = append(blobData, 0)
	}

	streams := []struct {
		name string
		data []byte
	}{
		{"#~", ts.Bytes()},
		{"#Strings", strData},
		{"#GUID", guids},
		{"#Blob", blobData},
	}

	version := []byte(runtimeVersion)
	version = append(version, 0)
	for len(version)%4 != 0 {
		version = append(version, 0)
	}

	headerSize := 16 + len(version) + 4
	for _, s := range streams {
		headerSize += 8 + int(align(uint32(len(s.name)+1), 4))
	}

	var root bytes.Buffer
	write(&root, uint32(0x424A5342))
	write(&root, uint16(1))
	write(&root, uint16(1))
	write(&root, uint32(0))
	write(&root, uint32(len(version)))
	root.Write(version)
	write(&root, uint16(0))
	write(&root, uint16(len(streams)))

	offset := uint32(headerSize)
	for _, s := range streams {
		write(&root, offset)
		write(&root, uint32(len(s.data)))
		name := make([]byte, align(uint32(len(s.name)+1), 4))
		copy(name, s.name)
		root.Write(name)
		offset += uint32(len(s.data))
	}
	for _, s := range streams {
		root.Write(s.data)
	}

	return root.Bytes()
}

// stringHeap は #Strings ヒープを重複なしで組み立てます
type stringHeap struct {
	data  []byte
	index map[string]uint32
}

func newStringHeap() *stringHeap {
	return &stringHeap{
		data:  []byte{0},
		index: map[string]uint32{"": 0},
	}
}

func (h *stringHeap) add(s string) uint32 {
	if i, ok := h.index[s]; ok {
		return i
	}
	i := uint32(len(h.data))
	h.data = append(h.data, s...)
	h.data = append(h.data, 0)
	h.index[s] = i
	return i
}

func write(buf *bytes.Buffer, v any) {
	// bytes.Buffer への書き込みは失敗しない
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func pad(buf *bytes.Buffer, n int) {
	for buf.Len()%n != 0 {
		buf.WriteByte(0)
	}
}

func align(v, n uint32) uint32 {
	return (v + n - 1) &^ (n - 1)
}
