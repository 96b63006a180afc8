// Command qtoctl runs maintenance tasks against the qtohub database:
// migrations, user provisioning and spreadsheet export/import on behalf of
// an existing user.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
