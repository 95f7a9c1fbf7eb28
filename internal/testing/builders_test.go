package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogawa-yk/Galley/internal/architecture"
)

func TestArchitectureBuilderIsImmutable(t *testing.T) {
	t.Parallel()

	base := NewArchitectureBuilder().WithComponent("net", "vcn", "main", nil)
	withWeb := base.WithComponent("web", "compute", "Web", architecture.Config{"ocpus": architecture.Int(2)})
	withEdge := withWeb.WithConnection("web", "net", architecture.ConnectionDeployedIn)

	assert.Len(t, base.Build().Components, 1)
	assert.Len(t, withWeb.Build().Components, 2)
	assert.Empty(t, withWeb.Build().Connections)
	require.Len(t, withEdge.Build().Connections, 1)
	assert.Equal(t, "deployed_in", withEdge.Build().Connections[0].ConnectionType)
	assert.NotNil(t, base.Build().Components[0].Config)
}

func TestScenarioBuilders(t *testing.T) {
	t.Parallel()

	arch := PublicDatabaseBehindOKE().Build()
	require.Len(t, arch.Components, 2)
	require.Len(t, arch.Connections, 1)
	assert.Equal(t, "public", arch.Components[1].Config.String("endpoint_type"))

	assert.Len(t, NetworkedCompute().Components(), 2)
}

func TestRecordingRunner(t *testing.T) {
	t.Parallel()

	r := NewRecordingRunner("ok")
	out, err := r.Run(TestContext(t), "oci", []string{"os", "ns", "get"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Stdout)
	assert.Equal(t, [][]string{{"oci", "os", "ns", "get"}}, r.Calls())
}
