package cmdtest

import (
	"testing"
)

func TestMain(m *testing.M) {
	Main(m)
}

func TestUI5check(t *testing.T) {
	Run(t, "testdata/ui5check")
}

func TestUI5ls(t *testing.T) {
	Run(t, "testdata/ui5ls")
}
