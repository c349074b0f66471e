package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstallCommand(t *testing.T) {
	cmd := NewInstallCommand()

	require.NotNil(t, cmd, "NewInstallCommand should not return nil")
	assert.Equal(t, "install", cmd.Use)
	assert.Contains(t, cmd.Long, "Install resolves the project manifest")

	flags := cmd.Flags()
	assert.NotNil(t, flags.Lookup("production"), "should have a --production flag")
	assert.NotNil(t, flags.Lookup("dev"), "should have a --dev flag")
	assert.NotNil(t, flags.Lookup("peer"), "should have a --peer flag")
}

func TestNewCleanCommand(t *testing.T) {
	cmd := NewCleanCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "clean", cmd.Use)

	flags := cmd.Flags()
	assert.NotNil(t, flags.Lookup("local"))
	assert.NotNil(t, flags.Lookup("global"))
	assert.NotNil(t, flags.Lookup("cache"))
	assert.NotNil(t, flags.Lookup("yes"))
}

func TestNewCacheCommandHasStatsAndVerifySubcommands(t *testing.T) {
	cmd := NewCacheCommand()

	require.NotNil(t, cmd)
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "stats")
	assert.Contains(t, names, "verify")
}

func TestNewEnvCommandsRequireExactlyOneArg(t *testing.T) {
	lookup := NewEnvLookupCommand()
	remove := NewEnvRemoveCommand()

	require.NotNil(t, lookup.Args)
	require.NotNil(t, remove.Args)
	assert.NoError(t, lookup.Args(lookup, []string{"one"}))
	assert.Error(t, lookup.Args(lookup, []string{}))
	assert.Error(t, remove.Args(remove, []string{"a", "b"}))
}

func TestNewShellCommandsRequireExactlyOneArg(t *testing.T) {
	lookup := NewShellLookupCommand()
	activate := NewShellActivateCommand()

	assert.Equal(t, "shell:lookup <dir>", lookup.Use)
	assert.Equal(t, "shell:activate <dir>", activate.Use)
	assert.NoError(t, activate.Args(activate, []string{"."}))
	assert.Error(t, activate.Args(activate, []string{}))
}

func TestIsHex(t *testing.T) {
	assert.True(t, isHex("abcdef0123456789"))
	assert.False(t, isHex("nothex!!"))
}
