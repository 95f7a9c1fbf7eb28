package provisioning

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/sogawa-yk/Galley/internal/platform/oci"
	"github.com/sogawa-yk/Galley/internal/session"
	"github.com/sogawa-yk/Galley/internal/util/labels"
	"github.com/sogawa-yk/Galley/internal/util/naming"
)

type packagePhase struct{}

func (packagePhase) Name() string { return "package" }

func (packagePhase) Provision(ctx *Context) error {
	archive, err := PackageDir(ctx.TerraformDir)
	if err != nil {
		return err
	}
	ctx.State.Archive = archive
	return nil
}

// stackPhase creates the session's stack on first use and updates it on
// every later call. A stored stack that no longer exists remotely is
// replaced. The stack id is saved as soon as it exists.
type stackPhase struct{}

func (stackPhase) Name() string { return "stack" }

func (stackPhase) Provision(ctx *Context) error {
	vars := stackVariables(ctx)
	ctx.State.Variables = vars
	source := oci.ZipUpload(EncodeArchive(ctx.State.Archive))
	name := naming.Stack(ctx.Session.ID)
	tags := labels.NewLabelBuilder(ctx.Session.ID).Build()

	if id := ctx.Session.StackID; id != "" {
		stack, err := ctx.RM.GetStack(ctx, id)
		switch {
		case oci.IsNotFound(err) || (err == nil && stack.LifecycleState == oci.StackDeleted):
			ctx.Observer.Event(Event{Type: EventStackMissing, Phase: "stack", Resource: id, Message: "stored stack no longer exists; creating a new one"})
		case err != nil:
			return err
		default:
			if _, err := ctx.RM.UpdateStack(ctx, id, oci.UpdateStackInput{
				DisplayName:      name,
				ConfigSource:     source,
				Variables:        vars,
				TerraformVersion: ctx.Config.TerraformVersion,
				FreeformTags:     tags,
			}); err != nil {
				return err
			}
			ctx.State.StackID = id
			ctx.Observer.Event(Event{Type: EventStackUpdated, Phase: "stack", Resource: id, Message: "stack updated"})
			return nil
		}
	}

	stack, err := ctx.RM.CreateStack(ctx, oci.CreateStackInput{
		CompartmentID:    ctx.Config.WorkCompartmentID,
		DisplayName:      name,
		Description:      fmt.Sprintf("Galley session %s", ctx.Session.ID),
		ConfigSource:     source,
		Variables:        vars,
		TerraformVersion: ctx.Config.TerraformVersion,
		FreeformTags:     tags,
	})
	if err != nil {
		return err
	}
	ctx.State.StackID = stack.ID
	ctx.State.StackCreated = true
	ctx.Observer.Event(Event{Type: EventStackCreated, Phase: "stack", Resource: stack.ID, Message: "stack created"})

	ctx.Session.StackID = stack.ID
	if _, err := session.Update(ctx, ctx.Store, ctx.Session.ID, func(s *session.Session) {
		s.StackID = stack.ID
		s.UpdatedAt = time.Now().UTC()
	}); err != nil {
		return fmt.Errorf("stack %s created but not saved on the session: %w", stack.ID, err)
	}
	return nil
}

// stackVariables fills region, compartment_ocid and tenancy_ocid unless
// the caller supplied them.
func stackVariables(ctx *Context) map[string]string {
	vars := map[string]string{
		"region":           ctx.Config.Region,
		"compartment_ocid": ctx.Config.WorkCompartmentID,
	}
	if _, ok := ctx.Request.Variables["tenancy_ocid"]; !ok {
		if id, err := ctx.RM.Identity(ctx); err == nil {
			vars["tenancy_ocid"] = id.TenancyID
		} else {
			vars["tenancy_ocid"] = ""
		}
	}
	maps.Copy(vars, ctx.Request.Variables)
	return vars
}

type jobPhase struct{}

func (jobPhase) Name() string { return "job" }

func (jobPhase) Provision(ctx *Context) error {
	op := ctx.Request.Operation
	in := oci.NewJobInput(ctx.State.StackID, op.JobOperation(), fmt.Sprintf("%s-%s", naming.Stack(ctx.Session.ID), op))
	in.FreeformTags = labels.NewLabelBuilder(ctx.Session.ID).WithOperation(string(op)).Build()
	job, err := ctx.RM.CreateJob(ctx, in)
	if err != nil {
		return err
	}
	ctx.State.Job = job
	ctx.Observer.Event(Event{Type: EventJobCreated, Phase: "job", Resource: job.ID, Message: fmt.Sprintf("%s job created", op)})
	return nil
}

// pollPhase waits for the job to reach a terminal state. Running out of
// time is an outcome, not an error: the remote job keeps running.
type pollPhase struct{}

func (pollPhase) Name() string { return "poll" }

func (pollPhase) Provision(ctx *Context) error {
	timeout := ctx.Timeouts.Plan
	if ctx.Request.Operation != OperationPlan {
		timeout = ctx.Timeouts.Apply
	}
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(ctx.Timeouts.JobPoll)
	defer ticker.Stop()

	jobID := ctx.State.Job.ID
	last := ctx.State.Job.LifecycleState
	timedOut := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ctx.State.TimedOut = true
		ctx.Observer.Event(Event{
			Type: EventJobTimedOut, Phase: "poll", Resource: jobID,
			Message: fmt.Sprintf("job still %s after %v", last, timeout),
		})
		return nil
	}

	for {
		select {
		case <-pollCtx.Done():
			return timedOut()
		case <-ticker.C:
		}

		job, err := ctx.RM.GetJob(pollCtx, jobID)
		if err != nil {
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
				return timedOut()
			}
			return err
		}
		if job.LifecycleState != last {
			last = job.LifecycleState
			ctx.Observer.Event(Event{Type: EventJobState, Phase: "poll", Resource: jobID, Message: "job " + string(last)})
		}
		if job.LifecycleState.Terminal() {
			ctx.State.Job = job
			return nil
		}
	}
}

// logPhase fetches the job log. A missing log leaves a placeholder text.
type logPhase struct{}

func (logPhase) Name() string { return "logs" }

func (logPhase) Provision(ctx *Context) error {
	jobID := ctx.State.Job.ID
	logs, err := ctx.RM.GetJobLogs(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ctx.State.Logs = fmt.Sprintf("(Failed to retrieve job logs for %s)", jobID)
		ctx.Observer.Event(Event{Type: EventLogsUnavailable, Phase: "logs", Resource: jobID, Message: err.Error()})
		return nil
	}
	ctx.State.Logs = logs
	ctx.State.LogsAvailable = true
	return nil
}
