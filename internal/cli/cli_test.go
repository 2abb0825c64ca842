package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"codello.dev/dertmpl/crmf"
	"codello.dev/dertmpl/der"
)

// run executes the archiveopts command with args and returns stdout and stderr.
func run(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(bytes.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDecode_Formats(t *testing.T) {
	tests := map[string]struct {
		format string
		input  string
	}{
		"der":    {"der", "\x82\x01\xff"},
		"hex":    {"hex", "82 01 ff\n"},
		"base64": {"base64", "ggH/\n"},
		"pem":    {"pem", "-----BEGIN PKI ARCHIVE OPTIONS-----\nggH/\n-----END PKI ARCHIVE OPTIONS-----\n"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := run(t, []byte(tc.input), "decode", "--format", tc.format)
			require.NoError(t, err)
			assert.Equal(t, "PKIArchiveOptions: archiveRemGenPrivKey [2]\n  archive:  true\n", stdout)
		})
	}
}

func TestDecode_Output(t *testing.T) {
	input := []byte{0x81, 0x03, 0x01, 0x02, 0x03}
	want := crmf.Description{
		Variant: "keyGenParameters",
		Tag:     "[1]",
		Fields:  []crmf.Field{{Name: "parameters", Value: "010203"}},
	}

	t.Run("json", func(t *testing.T) {
		stdout, _, err := run(t, input, "decode", "-o", "json")
		require.NoError(t, err)
		var got crmf.Description
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, want, got)
	})
	t.Run("yaml", func(t *testing.T) {
		stdout, _, err := run(t, input, "decode", "-o", "yaml")
		require.NoError(t, err)
		var got crmf.Description
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, want, got)
	})
}

func TestDecode_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.der")
	require.NoError(t, os.WriteFile(path, []byte{0x82, 0x01, 0x00}, 0o600))
	stdout, _, err := run(t, nil, "decode", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "archive:  false")

	_, _, err = run(t, nil, "decode", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("UnrecognizedTag", func(t *testing.T) {
		_, stderr, err := run(t, []byte{0x85, 0x01, 0x00}, "decode")
		var ucErr *der.UnrecognizedChoiceTagError
		require.ErrorAs(t, err, &ucErr)
		assert.Contains(t, stderr, "kind=\"unrecognized choice tag\"")
		assert.Contains(t, stderr, "tag=[5]")
		assert.Contains(t, stderr, "offset=0")
	})
	t.Run("Malformed", func(t *testing.T) {
		_, stderr, err := run(t, []byte{0x81, 0x0A, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, "decode")
		var mErr *der.MalformedEncodingError
		require.ErrorAs(t, err, &mErr)
		assert.Contains(t, stderr, "kind=\"malformed encoding\"")
	})
	t.Run("InvalidHex", func(t *testing.T) {
		_, _, err := run(t, []byte("zz"), "decode", "--format", "hex")
		assert.Error(t, err)
	})
	t.Run("WrongPEMType", func(t *testing.T) {
		input := "-----BEGIN CERTIFICATE-----\nggH/\n-----END CERTIFICATE-----\n"
		_, _, err := run(t, []byte(input), "decode", "--format", "pem")
		assert.ErrorContains(t, err, "CERTIFICATE")
	})
	t.Run("NoPEM", func(t *testing.T) {
		_, _, err := run(t, []byte("ggH/"), "decode", "--format", "pem")
		assert.ErrorIs(t, err, errNoPEM)
	})
}

func TestEncode(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"KeyGen":       {[]string{"encode", "keygen-params", "--hex", "010203"}, "8103010203\n"},
		"RemoteGen":    {[]string{"encode", "remote-gen"}, "8201ff\n"},
		"RemoteGenOff": {[]string{"encode", "remote-gen", "--archive=false"}, "820100\n"},
		"EncValue":     {[]string{"encode", "enc-value", "--enc-value-hex", "ab"}, "a00630040302" + "00ab\n"},
		"EncValueAlg": {
			[]string{"encode", "enc-value", "--enc-value-hex", "ab", "--symm-alg", "1.2.4", "--value-hint-hex", "01"},
			"a00f300da10406022a04840101030200ab\n",
		},
		"Enveloped": {[]string{"encode", "enveloped", "--content-hex", "020100"}, "a005a003020100\n"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := run(t, nil, append(tc.args, "--format", "hex")...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stdout)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	stdout, _, err := run(t, nil, "encode", "enc-value", "--enc-value-hex", "abcd",
		"--intended-alg", "2.16.840.1.101.3.4.1.42", "--enc-symm-key-hex", "ff", "--format", "pem")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "-----BEGIN PKI ARCHIVE OPTIONS-----\n"))

	decoded, _, err := run(t, []byte(stdout), "decode", "--format", "pem")
	require.NoError(t, err)
	assert.Contains(t, decoded, "intendedAlg:  2.16.840.1.101.3.4.1.42")
	assert.Contains(t, decoded, "encSymmKey:   ff")
	assert.Contains(t, decoded, "encValue:     abcd")
}

func TestEncode_InvalidFlags(t *testing.T) {
	tests := map[string][]string{
		"MissingHex": {"encode", "keygen-params"},
		"BadHex":     {"encode", "keygen-params", "--hex", "0g"},
		"BadOID":     {"encode", "enc-value", "--enc-value-hex", "ab", "--key-alg", "3.1"},
		"BadContent": {"encode", "enveloped", "--content-hex", "01"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, nil, args...)
			assert.Error(t, err)
		})
	}
}

func TestConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, "der", cfg.Format)
		assert.Equal(t, "text", cfg.OutputFormat)
		assert.False(t, cfg.Verbose)
		assert.NoError(t, cfg.Validate())
	})
	t.Run("Environment", func(t *testing.T) {
		t.Setenv("ARCHIVEOPTS_FORMAT", "hex")
		stdout, _, err := run(t, nil, "encode", "remote-gen")
		require.NoError(t, err)
		assert.Equal(t, "8201ff\n", stdout)
	})
	t.Run("FlagOverridesEnvironment", func(t *testing.T) {
		t.Setenv("ARCHIVEOPTS_FORMAT", "hex")
		stdout, _, err := run(t, nil, "encode", "remote-gen", "--format", "base64")
		require.NoError(t, err)
		assert.Equal(t, "ggH/\n", stdout)
	})
	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("format: base64\noutput: json\nverbose: true\n"), 0o600))
		stdout, stderr, err := run(t, []byte("ggH/"), "decode", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, `"variant": "archiveRemGenPrivKey"`)
		assert.Contains(t, stderr, "level=DEBUG")
	})
	t.Run("Invalid", func(t *testing.T) {
		_, _, err := run(t, nil, "encode", "remote-gen", "--output", "xml", "--format", "bin")
		assert.ErrorContains(t, err, "unsupported format")
		assert.ErrorContains(t, err, "unsupported output format")
	})
}
