// ucsconv converts F5 BIG-IP UCS archives and tmsh configuration files
// into JSON or YAML documents.
package main

import (
	"os"

	"github.com/fung04/ucsconv/cmd/ucsconv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
