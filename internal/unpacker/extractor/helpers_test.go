package extractor

import (
	"io"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/config"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/loader"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/mocks"
)

func newLoader(fs *mocks.MockFileSystem, parser *mocks.MockModuleParser, out io.Writer) *loader.Loader {
	return loader.New(loader.Options{
		FileSystem: fs,
		Parser:     parser,
		Logger:     config.NewConsoleLogger(out),
	})
}
