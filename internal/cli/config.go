package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys. Each key can be set by a flag of the same name, by an
// environment variable with the ARCHIVEOPTS_ prefix or in the config file.
const (
	keyFormat  = "format"
	keyOutput  = "output"
	keyVerbose = "verbose"

	envPrefix = "ARCHIVEOPTS"
)

var (
	formats       = []string{"der", "pem", "hex", "base64"}
	outputFormats = []string{string(OutputFormatText), string(OutputFormatJSON), string(OutputFormatYAML)}
)

// Config holds the CLI configuration
type Config struct {
	// ConfigFile is the path to an optional YAML configuration file
	ConfigFile string

	// Format is the encoding of DER data read and written by the CLI
	// (der, pem, hex, base64)
	Format string

	// OutputFormat controls how decoded values are printed (text, json, yaml)
	OutputFormat string

	// Verbose enables debug logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Format:       "der",
		OutputFormat: string(OutputFormatText),
	}
}

// Load merges flags, environment variables and the config file into c. Flags
// that were set explicitly take precedence over environment variables, which
// take precedence over the config file.
func (c *Config) Load(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	c.Format = strings.ToLower(v.GetString(keyFormat))
	c.OutputFormat = strings.ToLower(v.GetString(keyOutput))
	c.Verbose = v.GetBool(keyVerbose)
	return c.Validate()
}

// Validate checks that c contains supported values.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("unsupported format %q (want one of %s)", c.Format, strings.Join(formats, ", ")))
	}
	if !slices.Contains(outputFormats, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("unsupported output format %q (want one of %s)", c.OutputFormat, strings.Join(outputFormats, ", ")))
	}
	return errors.Join(errs...)
}
