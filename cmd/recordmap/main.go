// Command recordmap stores user records through the record mapper and prints
// JSON files as plain-text tables.
//
// Usage:
//
//	recordmap init
//	recordmap user add --first-name Ada --email ada@example.com
//	recordmap user get 1
//	recordmap user update 1 --email countess@example.com
//	recordmap user delete 1
//	recordmap jsontable data.json --print
//
// Configuration comes from defaults, an optional --config JSON file and
// RECORDMAP_* environment variables, in that order.
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
