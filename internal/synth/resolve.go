package synth

import (
	"fmt"
	"strings"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/catalog"
)

// resourceTypes maps the service types that can satisfy a variable to
// the Terraform resource type they render as.
var resourceTypes = map[string]string{
	"vcn":              "oci_core_vcn",
	"subnet":           "oci_core_subnet",
	"internet_gateway": "oci_core_internet_gateway",
	"nat_gateway":      "oci_core_nat_gateway",
	"service_gateway":  "oci_core_service_gateway",
	"route_table":      "oci_core_route_table",
	"security_list":    "oci_core_security_list",
}

// prefersPrivateSubnet decides subnet affinity per service type. Types
// not listed prefer the public subnet.
var prefersPrivateSubnet = map[string]func(architecture.Config) bool{
	"loadbalancer": func(c architecture.Config) bool { return c.Bool("is_private") },
	"apigateway":   func(c architecture.Config) bool { return strings.EqualFold(c.String("endpoint_type"), "PRIVATE") },
	"adb":          func(c architecture.Config) bool { return strings.EqualFold(c.String("endpoint_type"), "private") },
	"compute":      func(c architecture.Config) bool { return c.Bool("is_private") },
	"functions":    func(architecture.Config) bool { return true },
}

// pair holds the first public and first private candidate of one role.
type pair struct {
	public, private string
}

func (p pair) pick(private bool) (string, bool) {
	first, second := p.public, p.private
	if private {
		first, second = p.private, p.public
	}
	if first != "" {
		return first, true
	}
	return second, second != ""
}

// References are the sibling-provided addresses of one expanded graph.
type References struct {
	vcn, igw, nat, sgw string
	subnet             pair
	routeTable         pair
	securityList       pair
}

// BuildReferences scans the expanded graph in declaration order. The
// first component of each role wins. Subnets are private when they
// prohibit public IPs; route tables and security lists when their name
// says so.
func BuildReferences(components []architecture.Component, names func(id string) string, lib *catalog.Library) References {
	var r References
	setFirst := func(dst *string, ref string) {
		if *dst == "" {
			*dst = ref
		}
	}
	for _, c := range components {
		rt, ok := resourceTypes[c.ServiceType]
		if !ok {
			continue
		}
		ref := fmt.Sprintf("%s.%s.id", rt, names(c.ID))
		cfg := lib.Normalize(c.ServiceType, c.Config)
		namedPrivate := strings.Contains(strings.ToLower(c.DisplayName), "private")

		switch c.ServiceType {
		case "vcn":
			setFirst(&r.vcn, ref)
		case "internet_gateway":
			setFirst(&r.igw, ref)
		case "nat_gateway":
			setFirst(&r.nat, ref)
		case "service_gateway":
			setFirst(&r.sgw, ref)
		case "subnet":
			r.subnet.add(cfg.Bool("prohibit_public_ip"), ref)
		case "route_table":
			r.routeTable.add(namedPrivate, ref)
		case "security_list":
			r.securityList.add(namedPrivate, ref)
		}
	}
	return r
}

func (p *pair) add(private bool, ref string) {
	if private {
		if p.private == "" {
			p.private = ref
		}
		return
	}
	if p.public == "" {
		p.public = ref
	}
}

// Resolver returns the variable resolver for one component. cfg must be
// the component's normalized parameters.
func (r References) Resolver(c architecture.Component, cfg architecture.Config) catalog.ResolveFunc {
	privateSubnet := false
	if f, ok := prefersPrivateSubnet[c.ServiceType]; ok {
		privateSubnet = f(cfg)
	}
	isPrivateSubnet := c.ServiceType == "subnet" && cfg.Bool("prohibit_public_ip")
	isPrivateRouteTable := c.ServiceType == "route_table" && strings.Contains(strings.ToLower(c.DisplayName), "private")

	return func(variable string) (string, bool) {
		switch variable {
		case "vcn_id":
			return r.vcn, r.vcn != ""
		case "subnet_id":
			return r.subnet.pick(privateSubnet)
		case "node_subnet_id":
			return r.subnet.pick(true)
		case "gateway_id":
			if isPrivateRouteTable && r.nat != "" {
				return r.nat, true
			}
			return r.igw, r.igw != ""
		case "service_gateway_id":
			return r.sgw, r.sgw != ""
		case "route_table_id":
			return r.routeTable.pick(isPrivateSubnet)
		case "security_list_id":
			return r.securityList.pick(isPrivateSubnet)
		}
		return "", false
	}
}
