package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sogawa-yk/Galley/internal/config"
	"github.com/sogawa-yk/Galley/internal/util/prerequisites"
)

// DoctorCheck is one line of the doctor report.
type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Blocker bool   `json:"blocker"`
}

// DoctorReport is the outcome of `galley doctor`.
type DoctorReport struct {
	Checks []DoctorCheck `json:"checks"`
}

// Healthy reports whether nothing blocks provisioning.
func (r *DoctorReport) Healthy() bool {
	for _, c := range r.Checks {
		if c.Blocker && !c.OK {
			return false
		}
	}
	return true
}

var checkTools = prerequisites.CheckAll

// Doctor handles `galley doctor`.
func Doctor(ctx context.Context, opts *Options) error {
	return run(ctx, opts, func(a *app) error {
		report := buildDoctorReport(a.cfg, checkTools(ctx))
		if err := a.emit(report, func() string { return renderDoctor(report) }); err != nil {
			return err
		}
		if !report.Healthy() {
			return &ReportedError{Err: fmt.Errorf("doctor found blocking problems")}
		}
		return nil
	})
}

func buildDoctorReport(cfg *config.Config, tools *prerequisites.CheckResults) *DoctorReport {
	report := &DoctorReport{}
	for _, r := range tools.Results {
		detail := r.Path
		if r.Version != "" {
			detail = r.Version
		}
		if !r.Found {
			detail = "not found, see " + r.Tool.InstallURL
		}
		report.Checks = append(report.Checks, DoctorCheck{
			Name:    r.Tool.Name + " binary",
			OK:      r.Found,
			Detail:  detail,
			Blocker: r.Tool.Required,
		})
	}

	provisioningCheck := DoctorCheck{Name: "provisioning config", OK: true, Blocker: true,
		Detail: fmt.Sprintf("region %s, compartment %s", cfg.Region, cfg.WorkCompartmentID)}
	if err := cfg.RequireProvisioning(); err != nil {
		provisioningCheck.OK = false
		provisioningCheck.Detail = err.Error()
	}
	report.Checks = append(report.Checks, provisioningCheck)

	auth := "api key"
	if cfg.ResourcePrincipal {
		auth = "resource principal"
	} else if cfg.OCIProfile != "" {
		auth = "api key, profile " + cfg.OCIProfile
	}
	report.Checks = append(report.Checks,
		DoctorCheck{Name: "auth", OK: true, Detail: auth},
		DoctorCheck{Name: "session backend", OK: true, Detail: backendDetail(cfg)},
	)
	return report
}

func backendDetail(cfg *config.Config) string {
	if cfg.Session.Backend == config.BackendS3 {
		return fmt.Sprintf("s3 bucket %s at %s", cfg.Session.S3.Bucket, cfg.Session.S3.Endpoint)
	}
	return "file " + cfg.DataDir
}

func renderDoctor(r *DoctorReport) string {
	var b strings.Builder
	b.WriteString(title("galley doctor"))
	for _, c := range r.Checks {
		mark := okStyle.Render(checkMark)
		switch {
		case !c.OK && c.Blocker:
			mark = failStyle.Render(crossMark)
		case !c.OK:
			mark = warnStyle.Render(warnMark)
		}
		fmt.Fprintf(&b, "  %s %-22s %s\n", mark, c.Name, dimStyle.Render(c.Detail))
	}
	return b.String()
}
