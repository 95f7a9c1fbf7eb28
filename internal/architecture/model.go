package architecture

import (
	"time"
)

// Component is a single cloud resource node.
type Component struct {
	ID          string `json:"id"`
	ServiceType string `json:"service_type"`
	DisplayName string `json:"display_name"`
	Config      Config `json:"config,omitempty"`
}

// Connection is a directed edge between two components. Endpoints are not
// required to exist; dangling connections are tolerated and ignored by
// matching.
type Connection struct {
	SourceID       string `json:"source_id"`
	TargetID       string `json:"target_id"`
	ConnectionType string `json:"connection_type,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Connection types with structural meaning.
const (
	ConnectionDeployedIn = "deployed_in"
	ConnectionPublic     = "public"
	ConnectionPrivate    = "private"
)

// Severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationResult is one finding produced by the validator.
type ValidationResult struct {
	RuleID             string   `json:"rule_id"`
	Severity           Severity `json:"severity"`
	Message            string   `json:"message"`
	AffectedComponents []string `json:"affected_components"`
	Recommendation     string   `json:"recommendation,omitempty"`
}

// Architecture is the graph of one design session.
type Architecture struct {
	Components        []Component        `json:"components"`
	Connections       []Connection       `json:"connections"`
	ValidationResults []ValidationResult `json:"validation_results,omitempty"`
	ValidatedAt       *time.Time         `json:"validated_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
