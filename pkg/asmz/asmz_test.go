package asmz

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsQualified(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"asmz://ns/res/z", true},
		{"asmz://bad", true},
		{"asmz://", true},
		{"ASMZ://ns/res/z", false},
		{"app.Properties.Resources.resources", false},
		{"x-asmz://ns/res/z", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQualified(tt.name))
		})
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		want           Name
		wantCompressed bool
		wantErr        error
	}{
		{
			name:           "圧縮フラグあり",
			raw:            "asmz://ns/res1/z",
			want:           Name{Raw: "asmz://ns/res1/z", Namespace: "ns", ResourceID: "res1", Flags: "z"},
			wantCompressed: true,
		},
		{
			name: "フラグなし",
			raw:  "asmz://ns/res2/",
			want: Name{Raw: "asmz://ns/res2/", Namespace: "ns", ResourceID: "res2", Flags: ""},
		},
		{
			name:           "未知のフラグは無視される",
			raw:            "asmz://ns/res3/pzq",
			want:           Name{Raw: "asmz://ns/res3/pzq", Namespace: "ns", ResourceID: "res3", Flags: "pzq"},
			wantCompressed: true,
		},
		{
			name: "大文字の Z は圧縮フラグではない",
			raw:  "asmz://ns/res4/Z",
			want: Name{Raw: "asmz://ns/res4/Z", Namespace: "ns", ResourceID: "res4", Flags: "Z"},
		},
		{
			name: "4つ以上のセグメントは3番目を flags とする",
			raw:  "asmz://ns/res5/x/z",
			want: Name{Raw: "asmz://ns/res5/x/z", Namespace: "ns", ResourceID: "res5", Flags: "x"},
		},
		{
			name:    "セグメント不足",
			raw:     "asmz://bad",
			wantErr: ErrMalformedName,
		},
		{
			name:    "セグメントが2つ",
			raw:     "asmz://ns/res",
			wantErr: ErrMalformedName,
		},
		{
			name:    "接頭辞なし",
			raw:     "ns/res/z",
			wantErr: ErrNotQualified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.raw)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCompressed, got.Compressed())
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "asmz://ns/id/z", FormatName("ns", "id", true))
	assert.Equal(t, "asmz://ns/id/", FormatName("ns", "id", false))

	n, err := ParseName(FormatName("a", "b", true))
	require.NoError(t, err)
	assert.True(t, n.Compressed())
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"空":     {},
		"短い":    []byte("MZ"),
		"繰り返し":  bytes.Repeat([]byte("assembly payload "), 4096),
		"バイナリ値": {0x00, 0xFF, 0x10, 0x80, 0x7F},
	}

	for name, payload := range payloads {
		for _, compressed := range []bool{true, false} {
			t.Run(name, func(t *testing.T) {
				stored, err := Encode(payload, compressed)
				require.NoError(t, err)

				got, err := Decode(bytes.NewReader(stored), compressed)
				require.NoError(t, err)
				assert.Equal(t, len(payload), len(got))
				assert.True(t, bytes.Equal(payload, got))
			})
		}
	}
}

func TestDecode_Verbatim(t *testing.T) {
	got, err := Decode(strings.NewReader("raw bytes"), false)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes"), got)
}

func TestDecode_StopsAtStreamEnd(t *testing.T) {
	stored, err := Encode([]byte("payload"), true)
	require.NoError(t, err)

	// deflate の最終ブロック以降のデータは無視される
	trailing := append(stored, []byte("trailing garbage")...)
	got, err := Decode(bytes.NewReader(trailing), true)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}), true)
	assert.ErrorIs(t, err, ErrDecompress)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("simulated error")
}

func TestDecode_ReadError(t *testing.T) {
	_, err := Decode(errReader{}, false)
	assert.ErrorIs(t, err, ErrReadPayload)

	_, err = Decode(errReader{}, true)
	assert.ErrorIs(t, err, ErrDecompress)
}
