// Command goshop manages a local shopping list: everyday items grouped by
// category, shopping sessions, CSV import and backup strings.
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
