// Command errprop-lint reports where error propagation chains are handled
// in main packages.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"go-errprop/errprop"
)

func main() {
	singlechecker.Main(errprop.Analyzer)
}
