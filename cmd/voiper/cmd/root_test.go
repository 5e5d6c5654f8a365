package cmd_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoCodeAlone/voiper/cmd/voiper/cmd"
)

func TestRootCommand(t *testing.T) {
	rootCmd := cmd.NewRootCommand()
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "voiper", rootCmd.Use)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--help"})
	assert.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Voiper CLI")
	assert.Contains(t, buf.String(), "bundles")
}

func TestGenerateCommand(t *testing.T) {
	genCmd := cmd.NewGenerateCommand()
	assert.Equal(t, "generate", genCmd.Use)

	buf := new(bytes.Buffer)
	genCmd.SetOut(buf)
	genCmd.SetArgs([]string{"--help"})
	assert.NoError(t, genCmd.Execute())
	assert.Contains(t, buf.String(), "module")
}

func TestVersionCommand(t *testing.T) {
	rootCmd := cmd.NewRootCommand()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	assert.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Voiper CLI v")
	assert.Equal(t, cmd.PrintVersion()+"\n", buf.String())
}
