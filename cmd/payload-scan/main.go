package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"Go2PayloadScan/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	format     string
	backend    string
}

// usageError marks bad command-line arguments. Usage has already been printed when it is returned.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// usageFailure prints the usage of cmd to stderr and wraps err as a usage error.
func usageFailure(cmd *cobra.Command, err error) error {
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return &usageError{msg: err.Error()}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "payload-scan",
		Short: "Count target strings in the packet payloads of a pcap capture",
		Long: `payload-scan extracts the application payload of every packet in a capture
file and counts occurrences of a fixed set of strings, distributing the work
across workers with one of three strategies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Unknown subcommands reach the root as positional args.
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageFailure(cmd, fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageFailure(cmd, errors.New("a subcommand is required: scatter, scan or pipeline"))
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(usageFailure)

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&g.format, "format", "", "Report format: text or yaml")
	rootCmd.PersistentFlags().StringVar(&g.backend, "backend", "", "Capture backend: pcapgo or libpcap")

	rootCmd.AddCommand(newScatterCmd(g, stdout))
	rootCmd.AddCommand(newScanCmd(g, stdout))
	rootCmd.AddCommand(newPipelineCmd(g, stdout))

	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		var openErr *model.CaptureOpenError
		if errors.As(err, &openErr) {
			fmt.Fprintln(os.Stderr, openErr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "console",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return cfg.Build()
}
