package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGenerateRejectsWrongArgCount(t *testing.T) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"schema.xsd", "hdr.go"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected <xsd> <hdr> <src>")
}

func TestRunGenerateSingleArgRequiresVerifyFlag(t *testing.T) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"schema.xsd"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only makes sense with --verify")
}

func TestRunGenerateSingleArgMissingFile(t *testing.T) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--verify", "does-not-exist.xsd"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestNewRootCmdRegistersFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"debug", "skip-verify", "verify", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %q should be registered", name)
	}
}
