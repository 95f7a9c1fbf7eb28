package provisioning

import (
	"regexp"
	"strconv"
	"strings"
)

// NoChangesSummary is reported when a plan finds nothing to do.
const NoChangesSummary = "No changes. Infrastructure is up-to-date."

var (
	planSummaryRe    = regexp.MustCompile(`(\d+ to add, \d+ to change, \d+ to destroy)`)
	applySummaryRe   = regexp.MustCompile(`Apply complete! Resources: [^\n]*?\d+ destroyed`)
	destroySummaryRe = regexp.MustCompile(`Destroy complete! Resources: \d+ destroyed`)
	tfErrorRe        = regexp.MustCompile(`Error:\s*(?P<message>[^\n]+)(?:\n\n\s+on\s+(?P<file>\S+)\s+line\s+(?P<line>\d+))?`)
	ansiRe           = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// TerraformError is one diagnostic extracted from a job log. File and
// Line are empty when Terraform did not point at a source location.
type TerraformError struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// ExtractSummary returns the one-line outcome of a successful job, or ""
// when the log carries none.
func ExtractSummary(operation Operation, logs string) string {
	logs = ansiRe.ReplaceAllString(logs, "")
	switch operation {
	case OperationApply:
		if m := applySummaryRe.FindString(logs); m != "" {
			return m
		}
	case OperationDestroy:
		if m := destroySummaryRe.FindString(logs); m != "" {
			return m
		}
	}
	if m := planSummaryRe.FindStringSubmatch(logs); m != nil {
		return m[1]
	}
	if strings.Contains(strings.ToLower(logs), "no changes") {
		return NoChangesSummary
	}
	return ""
}

// ParseErrors returns the Terraform errors found in a job log.
func ParseErrors(logs string) []TerraformError {
	logs = ansiRe.ReplaceAllString(logs, "")
	var out []TerraformError
	for _, m := range tfErrorRe.FindAllStringSubmatch(logs, -1) {
		e := TerraformError{
			Message: strings.TrimSpace(m[tfErrorRe.SubexpIndex("message")]),
			File:    m[tfErrorRe.SubexpIndex("file")],
		}
		if line := m[tfErrorRe.SubexpIndex("line")]; line != "" {
			e.Line, _ = strconv.Atoi(line)
		}
		out = append(out, e)
	}
	return out
}
