package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	old := buildVersion
	t.Cleanup(func() { buildVersion = old })

	buildVersion = "v1.0.0"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Equal(t, "Build version: v1.0.0\nBuild date: N/A\nBuild commit: N/A\n", buf.String())
	assert.Equal(t, "v1.0.0", Version())
}

func TestVersion_Unset(t *testing.T) {
	old := buildVersion
	t.Cleanup(func() { buildVersion = old })

	buildVersion = ""
	assert.Equal(t, "N/A", Version())
}
