// Command bindc compiles hotkey binding configs.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/bindc/runtime/compiler"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsage        = 1
	ExitReadError    = 2
	ExitCompileError = 3
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(colorSetting(root), os.Stderr))
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bindc",
		Short:         "Compile hotkey binding configs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("file", "f", "", "Path to the binding config (- reads stdin)")
	flags.String("format", string(defaultFormat), "Output format: text, json, yaml or cbor")
	flags.String("color", colorAuto, "Color output: auto, always or never")
	flags.Bool("debug", false, "Enable debug output")

	rootCmd.AddCommand(
		newCompileCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bindc version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bindc %s\n", version)
		},
	}
}

// colorSetting recovers the color mode after a failed run. Settings that
// cannot be loaded fall back to auto.
func colorSetting(root *cobra.Command) string {
	cmd, _, err := root.Find(os.Args[1:])
	if err != nil {
		cmd = root
	}
	s, err := loadSettings(cmd.Flags())
	if err != nil {
		return colorAuto
	}
	return s.Color
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, compiler.ErrReadConfig):
		return ExitReadError
	case errors.As(err, new(*compiler.CompileError)):
		return ExitCompileError
	}
	return ExitUsage
}

// readInput resolves the config argument. "-" reads stdin; anything else is
// compiled from disk so imports resolve relative to it.
func readInput(path string, stdin io.Reader) (compiler.Input, error) {
	if path != "-" {
		return compiler.FromPath(path), nil
	}
	src, err := io.ReadAll(stdin)
	if err != nil {
		return compiler.Input{}, fmt.Errorf("error reading stdin: %w", err)
	}
	return compiler.FromString(string(src)), nil
}
