package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sogawa-yk/Galley/internal/errdefs"
	"github.com/sogawa-yk/Galley/internal/provisioning"
)

// Factory function variables for prompting - can be replaced in tests.
var (
	interactive = func() bool { return isTerminal(os.Stdin) }

	confirm = func(ctx context.Context, title, description string) (bool, error) {
		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(title).
					Description(description).
					Value(&ok),
			),
		).RunWithContext(ctx)
		return ok, err
	}
)

// parseVars turns key=value pairs into stack variables.
func parseVars(vars []string) (map[string]string, error) {
	out := make(map[string]string, len(vars))
	for _, kv := range vars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errdefs.InvalidInput("invalid variable %q (want name=value)", kv)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

// Provision handles `galley plan`, `galley apply` and `galley destroy`.
//
// Apply and destroy run auto-approved jobs, so they ask for confirmation
// unless yes is set. A job that did not succeed is rendered and then
// returned as a ReportedError for a non-zero exit status.
func Provision(ctx context.Context, opts *Options, operation, sessionID, dir string, vars []string, yes bool) error {
	return run(ctx, opts, func(a *app) error {
		op, err := provisioning.ParseOperation(operation)
		if err != nil {
			return errdefs.InvalidInput("%v", err)
		}
		variables, err := parseVars(vars)
		if err != nil {
			return err
		}

		if op != provisioning.OperationPlan && !yes {
			if !interactive() {
				return errdefs.Precondition("%s changes real infrastructure; pass --yes when not running in a terminal", op)
			}
			ok, err := confirm(ctx,
				fmt.Sprintf("Run %s for session %s?", op, sessionID),
				"The Resource Manager job is auto-approved.")
			if err != nil {
				return err
			}
			if !ok {
				return errdefs.Precondition("%s cancelled", op)
			}
		}

		orch := a.orchestrator()
		res, err := orch.Run(ctx, provisioning.Request{
			SessionID:    sessionID,
			Operation:    op,
			TerraformDir: dir,
			Variables:    variables,
		})
		if path := a.opts.MetricsFile; path != "" {
			if werr := orch.Metrics().WriteTextfile(path); werr != nil {
				a.log.Error(werr, "failed to write metrics", "path", path)
			}
		}
		if err != nil {
			return err
		}

		if err := a.emit(res, func() string { return renderResult(res) }); err != nil {
			return err
		}
		if !res.Success {
			return &ReportedError{Err: fmt.Errorf("%s %s", op, strings.ToLower(string(res.Status)))}
		}
		return nil
	})
}

// JobStatus handles `galley job`.
func JobStatus(ctx context.Context, opts *Options, jobID string) error {
	return run(ctx, opts, func(a *app) error {
		if err := a.cfg.RequireProvisioning(); err != nil {
			return errdefs.Precondition("%v", err)
		}
		status, err := a.orchestrator().JobStatus(ctx, jobID)
		if err != nil {
			return err
		}
		return a.emit(status, func() string { return renderJobStatus(status) })
	})
}

func renderResult(res *provisioning.Result) string {
	var b strings.Builder
	b.WriteString(title(fmt.Sprintf("galley %s: %s", res.Operation, res.SessionID)))

	state := failStyle.Render(crossMark + " " + string(res.Status))
	if res.Success {
		state = okStyle.Render(checkMark + " " + string(res.Status))
	} else if res.Status == provisioning.StatusTimedOut {
		state = warnStyle.Render(warnMark + " " + string(res.Status))
	}
	b.WriteString(row("Status", state))
	if res.StackID != "" {
		b.WriteString(row("Stack", res.StackID))
	}
	if res.JobID != "" {
		b.WriteString(row("Job", res.JobID))
	}
	b.WriteString(row("Duration", res.Duration().Round(1e9).String()))
	if res.Summary != "" {
		b.WriteString(row("Summary", res.Summary))
	}
	if res.Message != "" {
		b.WriteString(row("Message", res.Message))
	}
	if len(res.Errors) > 0 {
		b.WriteString(section("Terraform errors"))
		for _, e := range res.Errors {
			loc := ""
			if e.File != "" {
				loc = dimStyle.Render(fmt.Sprintf(" (%s:%d)", e.File, e.Line))
			}
			fmt.Fprintf(&b, "    %s %s%s\n", failStyle.Render(crossMark), e.Message, loc)
		}
	}
	return b.String()
}

func renderJobStatus(s *provisioning.JobStatus) string {
	var b strings.Builder
	b.WriteString(title("galley job: " + s.JobID))
	b.WriteString(row("Operation", s.Operation))
	b.WriteString(row("State", string(s.State)))
	if s.StackID != "" {
		b.WriteString(row("Stack", s.StackID))
	}
	if s.Summary != "" {
		b.WriteString(row("Summary", s.Summary))
	}
	if s.Failure != "" {
		b.WriteString(row("Failure", s.Failure))
	}
	for _, e := range s.Errors {
		fmt.Fprintf(&b, "    %s %s\n", failStyle.Render(crossMark), e.Message)
	}
	if s.Logs != "" {
		b.WriteString(section("Logs"))
		b.WriteString(s.Logs)
		if !strings.HasSuffix(s.Logs, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
