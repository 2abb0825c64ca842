package cli

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"strings"
)

// pemType is the PEM block type of PKIArchiveOptions data.
const pemType = "PKI ARCHIVE OPTIONS"

var errNoPEM = errors.New("no PEM block found")

// readInput reads DER data from r in the specified format.
func readInput(r io.Reader, format string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	switch format {
	case "der":
		return data, nil
	case "pem":
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, errNoPEM
		}
		if block.Type != pemType {
			return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
		}
		return block.Bytes, nil
	case "hex":
		return hex.DecodeString(stripSpace(data))
	case "base64":
		return base64.StdEncoding.DecodeString(stripSpace(data))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writeOutput writes DER data to w in the specified format.
func writeOutput(w io.Writer, format string, data []byte) error {
	var err error
	switch format {
	case "der":
		_, err = w.Write(data)
	case "pem":
		err = pem.Encode(w, &pem.Block{Type: pemType, Bytes: data})
	case "hex":
		_, err = fmt.Fprintln(w, hex.EncodeToString(data))
	case "base64":
		_, err = fmt.Fprintln(w, base64.StdEncoding.EncodeToString(data))
	default:
		err = fmt.Errorf("unsupported format: %s", format)
	}
	return err
}

// stripSpace removes all whitespace from b.
func stripSpace(b []byte) string {
	return strings.Join(strings.Fields(string(b)), "")
}
