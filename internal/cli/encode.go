package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"codello.dev/dertmpl/asn1"
	"codello.dev/dertmpl/crmf"
)

func (a *app) newEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a PKIArchiveOptions value",
		Long: `Encode a PKIArchiveOptions value. Each subcommand creates one alternative of
the CHOICE. The encoding is written to stdout in the configured format.`,
	}
	cmd.AddCommand(
		a.newEncodeKeyGenCommand(),
		a.newEncodeRemoteGenCommand(),
		a.newEncodeEncValueCommand(),
		a.newEncodeEnvelopedCommand(),
	)
	return cmd
}

func (a *app) newEncodeKeyGenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen-params",
		Short: "Encode the keyGenParameters alternative",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := hexFlag(cmd, "hex")
			if err != nil {
				return err
			}
			return a.encode(cmd, crmf.KeyGenParameters(params))
		},
	}
	cmd.Flags().String("hex", "", "key generation parameters in hex")
	_ = cmd.MarkFlagRequired("hex")
	return cmd
}

func (a *app) newEncodeRemoteGenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote-gen",
		Short: "Encode the archiveRemGenPrivKey alternative",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, _ := cmd.Flags().GetBool("archive")
			return a.encode(cmd, crmf.ArchiveRemGenPrivKey(archive))
		},
	}
	cmd.Flags().Bool("archive", true, "archive the remotely generated private key")
	return cmd
}

func (a *app) newEncodeEncValueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enc-value",
		Short: "Encode the encryptedPrivKey alternative with an EncryptedValue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := encryptedValueFromFlags(cmd)
			if err != nil {
				return err
			}
			return a.encode(cmd, crmf.EncryptedPrivKey{Key: v})
		},
	}
	flags := cmd.Flags()
	flags.String("enc-value-hex", "", "encrypted value in hex")
	flags.String("intended-alg", "", "OID of the intended algorithm")
	flags.String("symm-alg", "", "OID of the symmetric algorithm")
	flags.String("enc-symm-key-hex", "", "encrypted symmetric key in hex")
	flags.String("key-alg", "", "OID of the key encryption algorithm")
	flags.String("value-hint-hex", "", "value hint in hex")
	_ = cmd.MarkFlagRequired("enc-value-hex")
	return cmd
}

func (a *app) newEncodeEnvelopedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enveloped",
		Short: "Encode the encryptedPrivKey alternative with EnvelopedData",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := hexFlag(cmd, "content-hex")
			if err != nil {
				return err
			}
			return a.encode(cmd, crmf.EncryptedPrivKey{Key: crmf.EnvelopedData(content)})
		},
	}
	cmd.Flags().String("content-hex", "", "DER encoded components of the EnvelopedData in hex")
	_ = cmd.MarkFlagRequired("content-hex")
	return cmd
}

func (a *app) encode(cmd *cobra.Command, o crmf.ArchiveOptions) error {
	data, err := crmf.MarshalArchiveOptions(o)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	a.log.Debug("encoded", "tag", o.Tag().String(), "bytes", len(data), "format", a.cfg.Format)
	return writeOutput(cmd.OutOrStdout(), a.cfg.Format, data)
}

func encryptedValueFromFlags(cmd *cobra.Command) (*crmf.EncryptedValue, error) {
	var (
		v   crmf.EncryptedValue
		err error
	)
	encValue, err := hexFlag(cmd, "enc-value-hex")
	if err != nil {
		return nil, err
	}
	v.EncValue = asn1.BitString{Bytes: encValue, BitLength: 8 * len(encValue)}
	if v.IntendedAlg, err = algorithmFlag(cmd, "intended-alg"); err != nil {
		return nil, err
	}
	if v.SymmAlg, err = algorithmFlag(cmd, "symm-alg"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("enc-symm-key-hex") {
		key, err := hexFlag(cmd, "enc-symm-key-hex")
		if err != nil {
			return nil, err
		}
		v.EncSymmKey = &asn1.BitString{Bytes: key, BitLength: 8 * len(key)}
	}
	if v.KeyAlg, err = algorithmFlag(cmd, "key-alg"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("value-hint-hex") {
		if v.ValueHint, err = hexFlag(cmd, "value-hint-hex"); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

// hexFlag returns the decoded value of a hex encoded string flag.
func hexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return b, nil
}

// algorithmFlag returns an AlgorithmIdentifier for an OID flag, or nil if the
// flag is not set.
func algorithmFlag(cmd *cobra.Command, name string) (*crmf.AlgorithmIdentifier, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil || s == "" {
		return nil, err
	}
	oid, err := asn1.ParseObjectIdentifier(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &crmf.AlgorithmIdentifier{Algorithm: oid}, nil
}
