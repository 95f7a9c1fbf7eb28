package commands

import (
	"bytes"
	"testing"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogawa-yk/Galley/cmd/galley/handlers"
)

func TestRoot(t *testing.T) {
	t.Parallel()
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "galley", cmd.Use)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.SilenceUsage)
}

func TestRoot_HasSubcommands(t *testing.T) {
	t.Parallel()
	cmd := Root()

	expected := []string{
		"session", "design", "services", "validate", "synthesize", "export", "update-file",
		"plan", "apply", "destroy", "job", "oci", "doctor", "version",
	}
	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, subcommands[name], "expected subcommand %s", name)
	}
	assert.Len(t, cmd.Commands(), len(expected))
}

func TestRoot_PersistentFlags(t *testing.T) {
	t.Parallel()
	cmd := Root()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"config", "c", ""},
		{"output", "o", handlers.OutputText},
		{"log-level", "", "warn"},
		{"metrics-file", "", ""},
	}
	for _, tt := range tests {
		flag := cmd.PersistentFlags().Lookup(tt.name)
		require.NotNil(t, flag, tt.name)
		assert.Equal(t, tt.shorthand, flag.Shorthand, tt.name)
		assert.Equal(t, tt.def, flag.DefValue, tt.name)
	}
}

func TestProvisionCommands(t *testing.T) {
	t.Parallel()
	opts := &handlers.Options{}

	plan := Plan(opts)
	assert.Equal(t, "plan <session-id>", plan.Use)
	assert.NotNil(t, plan.Flags().Lookup("var"))
	assert.NotNil(t, plan.Flags().Lookup("dir"))
	assert.Nil(t, plan.Flags().Lookup("yes"), "plan never needs confirmation")

	for _, cmd := range []*cobra.Command{Apply(opts), Destroy(opts)} {
		flag := cmd.Flags().Lookup("yes")
		require.NotNil(t, flag, cmd.Name())
		assert.Equal(t, "y", flag.Shorthand)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestDesignSubcommands(t *testing.T) {
	t.Parallel()
	cmd := Design(&handlers.Options{})

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"save", "add", "remove", "configure", "connect"}, names)

	add, _, err := cmd.Find([]string{"add"})
	require.NoError(t, err)
	assert.Error(t, add.Args(add, []string{"only-session"}))
	assert.NoError(t, add.Args(add, []string{"s", "vcn"}))
	assert.NoError(t, add.Args(add, []string{"s", "vcn", "main"}))
}

func TestExportDefaultsToAll(t *testing.T) {
	t.Parallel()
	cmd := Export(&handlers.Options{})

	flag := cmd.Flags().Lookup("kind")
	require.NotNil(t, flag)
	assert.Equal(t, handlers.ExportAll, flag.DefValue)
}

func TestJoinArgs(t *testing.T) {
	t.Parallel()

	tests := [][]string{
		{"compute", "instance", "list"},
		{"os", "object", "list", "--query", "data[?name=='a b']"},
		{"iam", "user", "list", "--name", "it's"},
	}
	for _, args := range tests {
		got, err := shlex.Split(joinArgs(args))
		require.NoError(t, err)
		assert.Equal(t, args, got)
	}

	assert.Equal(t, `compute instance list --name "a b"`, joinArgs([]string{`compute instance list --name "a b"`}))
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer func() { version, commit, date = origVersion, origCommit, origDate }()

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	cmd := Version()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "galley 1.2.3")
	assert.Contains(t, buf.String(), "commit: abc123")
	assert.Contains(t, buf.String(), "built:  2026-01-01")
}
