package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	for _, name := range []string{"run", "setup", "doctor", "reset"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRunHelpExplainsEmbeddedBroker(t *testing.T) {
	assert.Contains(t, runCmd.Long, "network listener")
	assert.Contains(t, runCmd.Long, "broker.url")
	assert.NotNil(t, runCmd.Flags().Lookup("broker-url"))
}
