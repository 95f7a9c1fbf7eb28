package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingFunctions(t *testing.T) {
	t.Parallel()
	vcn := "App VCN"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "Stack", got: Stack("s-123"), expected: "galley-s-123"},
		{name: "InternetGateway", got: InternetGateway(vcn), expected: "App VCN IGW"},
		{name: "NATGateway", got: NATGateway(vcn), expected: "App VCN NAT GW"},
		{name: "ServiceGateway", got: ServiceGateway(vcn), expected: "App VCN Service GW"},
		{name: "PublicSecurityList", got: SecurityList(vcn, false), expected: "App VCN Public Security List"},
		{name: "PrivateRouteTable", got: RouteTable(vcn, true), expected: "App VCN Private Route Table"},
		{name: "PrivateSubnet", got: Subnet(vcn, true), expected: "App VCN Private Subnet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"autonomous_db_(atp)", "autonomous_db_atp"},
		{"my@server#1", "myserver1"},
		{"123server", "_123server"},
		{"My Web-Server", "my_web_server"},
		{"web_server", "web_server"},
		{"日本語", "resource"},
		{"", "resource"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Identifier(tt.in), tt.in)
	}
}

func TestAllocatorAvoidsCollisions(t *testing.T) {
	t.Parallel()

	a := NewAllocator()
	assert.Equal(t, "web", a.Assign("1", "Web"))
	assert.Equal(t, "web_1", a.Assign("2", "web"))
	assert.Equal(t, "web_1_1", a.Assign("3", "web_1"))
	assert.Equal(t, "web_2", a.Assign("4", "WEB"))
	assert.Equal(t, "web", a.Assign("1", "ignored"), "assignment is stable per key")

	id, ok := a.Lookup("2")
	assert.True(t, ok)
	assert.Equal(t, "web_1", id)
	_, ok = a.Lookup("nope")
	assert.False(t, ok)
}
