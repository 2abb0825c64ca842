// Package cli implements the archiveopts command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by all commands of a single invocation.
type app struct {
	v   *viper.Viper
	cfg *Config
	log *slog.Logger
}

// NewRootCommand creates the archiveopts command. Input is read from stdin
// unless a file is given, results are written to stdout and log messages to
// stderr.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), cfg: NewConfig()}
	cmd := &cobra.Command{
		Use:   "archiveopts",
		Short: "Decode and encode CRMF PKIArchiveOptions",
		Long: `archiveopts decodes and encodes the PKIArchiveOptions control of the
Certificate Request Message Format (RFC 4211).

Input and output can be raw DER, PEM (type "PKI ARCHIVE OPTIONS"), hex or
base64. Every flag can also be set with an ARCHIVEOPTS_ environment variable
or in a YAML config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Load(a.v, cmd); err != nil {
				return err
			}
			a.log = NewLogger(cmd.ErrOrStderr(), a.cfg.Verbose)
			a.log.Debug("configuration loaded",
				"format", a.cfg.Format, "output", a.cfg.OutputFormat, "config", a.cfg.ConfigFile)
			return nil
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfg.ConfigFile, "config", "", "config file (YAML)")
	flags.StringP(keyFormat, "f", a.cfg.Format, "encoding of DER data (der, pem, hex, base64)")
	flags.StringP(keyOutput, "o", a.cfg.OutputFormat, "output format of decoded values (text, json, yaml)")
	flags.BoolP(keyVerbose, "v", false, "verbose logging")

	cmd.AddCommand(a.newDecodeCommand(), a.newEncodeCommand())
	return cmd
}

// Execute runs the archiveopts command with the process' standard streams and
// returns the exit code.
func Execute(args []string) int {
	cmd := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
