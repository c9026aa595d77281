package asmz

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Decode はリソースストリームを最後まで読み込み、ペイロードのバイト列を返します。
// compressed が true の場合は生の deflate ストリームとして展開します。
// ストリームの終端は deflate の最終ブロックで判定し、長さ情報には依存しません。
func Decode(r io.Reader, compressed bool) ([]byte, error) {
	if !compressed {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadPayload, err)
		}
		return data, nil
	}

	fr := flate.NewReader(r)
	defer fr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, fr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	return buf.Bytes(), nil
}

// Encode はペイロードをリソースに格納する形式に変換します。
// compressed が true の場合は生の deflate ストリームに圧縮します。
func Encode(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return append([]byte(nil), data...), nil
	}

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
