// Command shopledger manages the retail ledger from the command line.
package main

import "github.com/mesh-intelligence/shopledger/internal/cli"

func main() {
	cli.Execute()
}
