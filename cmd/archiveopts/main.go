// Command archiveopts decodes and encodes CRMF PKIArchiveOptions values.
package main

import (
	"os"

	"codello.dev/dertmpl/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
