package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/bindc/core/hotkey"
	"github.com/aledsdavies/bindc/runtime/codec"
	"github.com/aledsdavies/bindc/runtime/compiler"
	"github.com/aledsdavies/bindc/runtime/watch"
)

// newLogger writes debug records to w without time and level noise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// setup resolves settings and the config path for a command. An explicit
// argument wins over the file setting.
func setup(cmd *cobra.Command, args []string) (Settings, string, *slog.Logger, error) {
	s, err := loadSettings(cmd.Flags())
	if err != nil {
		return Settings{}, "", nil, err
	}
	path := s.File
	if len(args) > 0 {
		path = args[0]
	}
	return s, path, newLogger(cmd.ErrOrStderr(), s.Debug), nil
}

func compileConfig(cmd *cobra.Command, path string, logger *slog.Logger) (*hotkey.Config, error) {
	input, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return compiler.Compile(input, compiler.WithLogger(logger))
}

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile [config]",
		Short: "Compile a config and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, logger, err := setup(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := compileConfig(cmd, path, logger)
			if err != nil {
				return err
			}
			return codec.Encode(cmd.OutOrStdout(), cfg, s.Format)
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [config]",
		Short: "Validate a config without printing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, logger, err := setup(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := compileConfig(cmd, path, logger)
			if err != nil {
				return err
			}
			useColor := ShouldUseColor(s.Color, cmd.OutOrStdout())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d bindings, %d unbinds, %d modes, %d files\n",
				Colorize("ok", ColorGreen, useColor), path,
				cfg.BindingCount(), len(cfg.Unbinds), len(cfg.Modes), len(cfg.Files))
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [config]",
		Short: "Recompile a config and its imports whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, logger, err := setup(cmd, args)
			if err != nil {
				return err
			}
			if path == "-" {
				return fmt.Errorf("watch needs a config file, not stdin")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), path, s, logger)
		},
	}
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Settle time before recompiling")
	return cmd
}

func runWatch(ctx context.Context, stdout, stderr io.Writer, path string, s Settings, logger *slog.Logger) error {
	outColor := ShouldUseColor(s.Color, stdout)
	errColor := ShouldUseColor(s.Color, stderr)

	handle := func(r watch.Result) {
		if r.Err != nil {
			FormatError(stderr, r.Err, errColor)
			return
		}
		_, _ = fmt.Fprintf(stdout, "%s %s (%d bindings, %x)\n",
			Colorize("compiled", ColorGreen, outColor), path, r.Config.BindingCount(), r.Hash[:6])
		if r.Diff != nil {
			_, _ = fmt.Fprint(stdout, codec.FormatDiff(r.Diff, outColor))
		}
	}

	return watch.Watch(ctx, path, handle,
		watch.WithDebounce(s.Debounce),
		watch.WithLogger(logger),
		watch.WithCompileOptions(compiler.WithLogger(logger)),
	)
}
