package naming

import (
	"fmt"
	"regexp"
	"strings"
)

var disallowed = regexp.MustCompile(`[^a-z0-9_]`)

// Identifier converts a display name into a lowercase identifier made of
// [a-z0-9_]. Spaces and hyphens become underscores, other characters are
// dropped, a leading digit is prefixed with "_" and an empty result
// becomes "resource".
func Identifier(displayName string) string {
	name := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(displayName))
	name = disallowed.ReplaceAllString(name, "")
	if name == "" {
		return "resource"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

// Allocator assigns unique identifiers to keys. Repeated display names get
// a numeric suffix: web, web_1, web_2.
type Allocator struct {
	byKey map[string]string
	used  map[string]bool
}

// NewAllocator returns an empty Allocator.
func NewAllocator() *Allocator {
	return &Allocator{byKey: make(map[string]string), used: make(map[string]bool)}
}

// Assign returns the identifier for key, allocating one from displayName
// on first use.
func (a *Allocator) Assign(key, displayName string) string {
	if id, ok := a.byKey[key]; ok {
		return id
	}
	base := Identifier(displayName)
	id := base
	for n := 1; a.used[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	a.used[id] = true
	a.byKey[key] = id
	return id
}

// Lookup returns the identifier previously assigned to key.
func (a *Allocator) Lookup(key string) (string, bool) {
	id, ok := a.byKey[key]
	return id, ok
}

// Stack returns the Resource Manager stack display name for a session.
func Stack(sessionID string) string {
	return fmt.Sprintf("galley-%s", sessionID)
}

func InternetGateway(vcn string) string {
	return fmt.Sprintf("%s IGW", vcn)
}

func NATGateway(vcn string) string {
	return fmt.Sprintf("%s NAT GW", vcn)
}

func ServiceGateway(vcn string) string {
	return fmt.Sprintf("%s Service GW", vcn)
}

func SecurityList(vcn string, private bool) string {
	return fmt.Sprintf("%s %s Security List", vcn, visibility(private))
}

func RouteTable(vcn string, private bool) string {
	return fmt.Sprintf("%s %s Route Table", vcn, visibility(private))
}

func Subnet(vcn string, private bool) string {
	return fmt.Sprintf("%s %s Subnet", vcn, visibility(private))
}

func visibility(private bool) string {
	if private {
		return "Private"
	}
	return "Public"
}
