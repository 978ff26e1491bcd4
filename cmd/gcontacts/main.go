// Command gcontacts is a thin CLI over the Google Contacts client,
// useful for poking at an account's contacts and groups from a terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
