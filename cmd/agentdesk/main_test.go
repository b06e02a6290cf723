package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	assert.Equal(t, "agentdesk", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))

	var serve bool
	for _, c := range rootCmd.Commands() {
		if c.Use == "serve" {
			serve = true
			require.NotNil(t, c.Flags().Lookup("addr"))
			require.NotNil(t, c.Flags().Lookup("db"))
			require.NotNil(t, c.Flags().Lookup("seed"))
		}
	}
	assert.True(t, serve, "serve subcommand registered")
}
