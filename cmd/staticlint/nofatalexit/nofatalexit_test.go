package nofatalexit

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

// Test runs the Analyzer against test data using analysistest.
// Package a is a main package with forbidden calls, package b is a
// library where the same calls are allowed.
func Test(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer, "a", "b")
}
