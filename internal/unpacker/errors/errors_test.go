package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleError(t *testing.T) {
	tests := []struct {
		name      string
		err       *ModuleError
		wantMsg   string
		isLoadErr bool
	}{
		{
			name:      "パスあり",
			err:       NewModuleError(OpLoad, "/in/app.exe", io.ErrUnexpectedEOF),
			wantMsg:   "load /in/app.exe: unexpected EOF",
			isLoadErr: true,
		},
		{
			name:    "パスなし",
			err:     NewModuleError("write", "", io.EOF),
			wantMsg: "write: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.isLoadErr, errors.Is(tt.err, ErrLoadFailure))
			assert.True(t, errors.Is(tt.err, tt.err.Err))
		})
	}
}

func TestResourceError(t *testing.T) {
	err := NewResourceError("asmz://bad", ErrMalformedResourceName)

	assert.Equal(t, "リソース 'asmz://bad': リソース名の形式が不正です", err.Error())
	assert.ErrorIs(t, err, ErrMalformedResourceName)

	var target *ResourceError
	wrapped := NewModuleError("extract", "app.dll", err)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "asmz://bad", target.Resource)
}
