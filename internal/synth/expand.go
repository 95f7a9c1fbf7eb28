package synth

import (
	"encoding/binary"
	"net/netip"

	"github.com/google/uuid"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/util/naming"
)

// NetworkBoundary is the service type that triggers expansion.
const NetworkBoundary = "vcn"

const (
	defaultVCNCIDR     = "10.0.0.0/16"
	publicIngressPort  = 443
	privateIngressPort = 8000
)

// Expand returns components plus the network roles the first VCN needs
// and the graph lacks. Existing components are never modified and
// expanding an already expanded graph adds nothing. Synthetic ids are
// derived from the VCN id so repeated expansion is stable.
func Expand(components []architecture.Component) []architecture.Component {
	out := make([]architecture.Component, 0, len(components)+9)
	present := make(map[string]bool)
	var vcn *architecture.Component
	for i, c := range components {
		c.Config = c.Config.Clone()
		out = append(out, c)
		present[c.ServiceType] = true
		if vcn == nil && c.ServiceType == NetworkBoundary {
			vcn = &components[i]
		}
	}
	if vcn == nil {
		return out
	}

	name := vcn.DisplayName
	cidr := vcn.Config.String("cidr_block")
	if cidr == "" {
		cidr = defaultVCNCIDR
	}
	publicCIDR, privateCIDR := subnetCIDRs(cidr)
	privateSource := cidr
	if _, err := netip.ParsePrefix(cidr); err != nil {
		privateSource = defaultVCNCIDR
	}

	add := func(role, serviceType, displayName string, cfg architecture.Config) {
		out = append(out, architecture.Component{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(vcn.ID+"/"+role)).String(),
			ServiceType: serviceType,
			DisplayName: displayName,
			Config:      cfg,
		})
	}

	if !present["internet_gateway"] {
		add("igw", "internet_gateway", naming.InternetGateway(name), architecture.Config{})
	}
	if !present["nat_gateway"] {
		add("nat", "nat_gateway", naming.NATGateway(name), architecture.Config{})
	}
	if !present["service_gateway"] {
		add("sgw", "service_gateway", naming.ServiceGateway(name), architecture.Config{})
	}
	if !present["security_list"] {
		add("sl-public", "security_list", naming.SecurityList(name, false), architecture.Config{
			"ingress_source": architecture.String("0.0.0.0/0"),
			"ingress_port":   architecture.Int(publicIngressPort),
		})
		add("sl-private", "security_list", naming.SecurityList(name, true), architecture.Config{
			"ingress_source": architecture.String(privateSource),
			"ingress_port":   architecture.Int(privateIngressPort),
		})
	}
	if !present["route_table"] {
		add("rt-public", "route_table", naming.RouteTable(name, false), architecture.Config{
			"destination": architecture.String("0.0.0.0/0"),
		})
		add("rt-private", "route_table", naming.RouteTable(name, true), architecture.Config{
			"destination":           architecture.String("0.0.0.0/0"),
			"service_gateway_route": architecture.Bool(true),
		})
	}
	if !present["subnet"] {
		add("subnet-public", "subnet", naming.Subnet(name, false), architecture.Config{
			"cidr_block":         architecture.String(publicCIDR),
			"prohibit_public_ip": architecture.Bool(false),
		})
		add("subnet-private", "subnet", naming.Subnet(name, true), architecture.Config{
			"cidr_block":         architecture.String(privateCIDR),
			"prohibit_public_ip": architecture.Bool(true),
		})
	}
	return out
}

// subnetCIDRs carves the second and third /24 out of the VCN range. VCNs
// smaller than /22 or unparsable ones fall back to 10.0.1.0/24 and
// 10.0.2.0/24.
func subnetCIDRs(vcnCIDR string) (string, string) {
	prefix, err := netip.ParsePrefix(vcnCIDR)
	if err != nil || !prefix.Addr().Is4() || prefix.Bits() > 22 {
		return "10.0.1.0/24", "10.0.2.0/24"
	}
	b := prefix.Masked().Addr().As4()
	base := binary.BigEndian.Uint32(b[:])
	nth := func(n uint32) string {
		var out [4]byte
		binary.BigEndian.PutUint32(out[:], base+n<<8)
		return netip.PrefixFrom(netip.AddrFrom4(out), 24).String()
	}
	return nth(1), nth(2)
}
