// Command runson helps pick EC2 instance families for runs-on runners and
// estimates what GitHub Actions runs cost on them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
