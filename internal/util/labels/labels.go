// Package labels provides consistent freeform tags for OCI Resource Manager
// stacks and jobs.
//
// Every stack and job Galley creates carries the session it belongs to, so
// resources can be found in the console or with `oci resource-manager stack
// list` after local state is gone.
package labels

// Standard freeform tag keys. OCI tag keys may not contain periods.
const (
	// KeySession identifies which design session a resource belongs to
	KeySession = "galley-session"

	// KeyOperation identifies the job operation (plan, apply, destroy)
	KeyOperation = "galley-operation"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "managed-by"
)

// ManagedByGalley is the value of KeyManagedBy.
const ManagedByGalley = "galley"

// LabelBuilder provides a fluent interface for building freeform tags.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the session pre-set.
func NewLabelBuilder(sessionID string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeySession:   sessionID,
			KeyManagedBy: ManagedByGalley,
		},
	}
}

// WithOperation sets the job operation.
func (lb *LabelBuilder) WithOperation(op string) *LabelBuilder {
	lb.labels[KeyOperation] = op
	return lb
}

// Merge adds extra tags. The standard keys cannot be overridden.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		if k == KeySession || k == KeyManagedBy {
			continue
		}
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the tags.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// IsManaged reports whether tags mark a resource as created by Galley for
// sessionID.
func IsManaged(tags map[string]string, sessionID string) bool {
	return tags[KeyManagedBy] == ManagedByGalley && tags[KeySession] == sessionID
}
