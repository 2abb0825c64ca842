package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codello.dev/dertmpl/crmf"
)

func (a *app) newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode a PKIArchiveOptions value",
		Long: `Decode a PKIArchiveOptions value and print a summary of the selected
alternative. Without a file or with "-" the value is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			name := "-"
			if len(args) == 1 && args[0] != "-" {
				name = args[0]
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return a.decode(r, name, cmd.OutOrStdout())
		},
	}
}

func (a *app) decode(r io.Reader, name string, w io.Writer) error {
	data, err := readInput(r, a.cfg.Format)
	if err != nil {
		return err
	}
	a.log.Debug("decoding", "input", name, "format", a.cfg.Format, "bytes", len(data))
	o, err := crmf.ParseArchiveOptions(data)
	if err != nil {
		logDecodeError(a.log, err)
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	desc := crmf.Describe(o)
	a.log.Debug("decoded", "variant", desc.Variant, "tag", desc.Tag)
	return NewPrinter(a.cfg.OutputFormat, w).PrintDescription(desc)
}
