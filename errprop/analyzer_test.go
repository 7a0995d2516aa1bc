package errprop_test

import (
	"testing"

	"go-errprop/errprop"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestAnalyzer(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, errprop.Analyzer,
		"chain",
		"handled",
		"library",
	)
}
