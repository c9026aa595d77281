package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiroemons/go-libzunpack/internal/unpacker/app"
	"github.com/shiroemons/go-libzunpack/internal/unpacker/config"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd はlibzunpackコマンドを作成します
func newRootCmd(stdout io.Writer) *cobra.Command {
	cfg := config.New()

	cmd := &cobra.Command{
		Use:   "libzunpack <inpath> <outpath>",
		Short: "Extract assemblies embedded with LibZ",
		Long: `libzunpack extracts assemblies that LibZ packed into a .NET module.

Resources named asmz://<namespace>/<resource-id>/<flags> are written to
<outpath> as <assembly name>.dll. <inpath> is either a single .dll/.exe
or a directory whose modules are processed one by one.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if cfg.ShowVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ShowVersion {
				fmt.Fprintln(stdout, config.VersionString())
				return nil
			}
			cmd.SilenceUsage = true

			if cfg.ConfigFile != "" {
				fc, err := config.LoadFile(cfg.ConfigFile)
				if err != nil {
					return err
				}
				cfg.Apply(fc, cmd.Flags())
			}

			cfg.InputPath = args[0]
			cfg.OutputDir = args[1]

			return app.NewWithOptions(cfg, app.Options{Stdout: stdout}).Run()
		},
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)

	config.BindFlags(cfg, cmd.Flags())
	return cmd
}
