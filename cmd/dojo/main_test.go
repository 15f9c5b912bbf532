package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/common"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int64{"valuation": 42}))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n"))
	assert.Contains(t, buf.String(), `  "valuation": 42`)
}

func TestRootCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"value", "compare", "check", "rank", "resolve", "history", "serve", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestArgValidation(t *testing.T) {
	assert.Error(t, valueCmd.Args(valueCmd, nil))
	assert.NoError(t, valueCmd.Args(valueCmd, []string{"META"}))
	assert.Error(t, compareCmd.Args(compareCmd, []string{"Revenues"}))
	assert.NoError(t, compareCmd.Args(compareCmd, []string{"Revenues", "AAPL", "MSFT"}))
	assert.Error(t, rankCmd.Args(rankCmd, []string{"OperatingIncomeLoss", "CY2023", "Assets"}))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.Contains(out.String(), common.GetVersion()))
}
