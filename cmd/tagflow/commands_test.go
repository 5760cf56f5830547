package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every command taking a file argument must reject a missing one through its
// validator instead of reaching RunE.
func TestFileCommandsRequireArgument(t *testing.T) {
	tests := []struct {
		name string
		cmd  *cobra.Command
	}{
		{name: "import", cmd: importCmd()},
		{name: "tag", cmd: tagCmd()},
		{name: "vendors", cmd: vendorsCmd()},
		{name: "progress", cmd: progressCmd()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.SetArgs([]string{})
			tt.cmd.SetOut(&bytes.Buffer{})
			tt.cmd.SetErr(&bytes.Buffer{})

			var err error
			require.NotPanics(t, func() { err = tt.cmd.Execute() })
			assert.Error(t, err)
		})
	}
}

func TestTrendRequiresCategoryArgument(t *testing.T) {
	cmd := trendCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	var err error
	require.NotPanics(t, func() { err = cmd.Execute() })
	assert.Error(t, err)
}
