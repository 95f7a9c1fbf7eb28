package prerequisites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFindsTool(t *testing.T) {
	t.Parallel()

	var found string
	for _, name := range []string{"sh", "bash", "ls", "cat"} {
		if r := Check(context.Background(), []Tool{{Name: name}}); r.Results[0].Found {
			found = name
			break
		}
	}
	if found == "" {
		t.Skip("no common tools found in PATH")
	}

	results := Check(context.Background(), []Tool{{Name: found, Required: true}})
	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.NotEmpty(t, results.Results[0].Path)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheckMissingTool(t *testing.T) {
	t.Parallel()

	results := Check(context.Background(), []Tool{
		{Name: "nonexistent-tool-xyz123", Required: true, InstallURL: "https://example.com/install"},
		{Name: "nonexistent-optional-xyz123", Required: false},
	})

	assert.Len(t, results.Missing, 2)
	assert.True(t, results.HasErrors())
	err := results.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent-tool-xyz123 (https://example.com/install)")
	assert.NotContains(t, err.Error(), "nonexistent-optional-xyz123")
}

func TestOptionalMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	results := Check(context.Background(), []Tool{{Name: "nonexistent-optional-xyz123"}})
	assert.False(t, results.HasErrors())
}

func TestDefaultToolsRequireOCI(t *testing.T) {
	t.Parallel()

	tools := DefaultTools()
	require.Len(t, tools, 1)
	assert.Equal(t, "oci", tools[0].Name)
	assert.True(t, tools[0].Required)
}
