package provisioning

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/sogawa-yk/Galley/internal/config"
	"github.com/sogawa-yk/Galley/internal/errdefs"
	"github.com/sogawa-yk/Galley/internal/platform/oci"
	"github.com/sogawa-yk/Galley/internal/session"
)

// Orchestrator runs plan, apply and destroy against a session's Resource
// Manager stack.
type Orchestrator struct {
	rm       oci.Manager
	store    session.Store
	cfg      *config.Config
	timeouts *config.Timeouts
	guard    *Guard
	observer Observer
	metrics  *Metrics
	log      logr.Logger
	phases   []Phase
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Events go to the same logger unless an
// observer is set.
func WithLogger(log logr.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithObserver replaces the event sink.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithMetrics records call outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithGuard shares a guard between orchestrators.
func WithGuard(g *Guard) Option {
	return func(o *Orchestrator) { o.guard = g }
}

// WithClock overrides the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires an orchestrator. A nil timeouts uses the defaults.
func NewOrchestrator(cfg *config.Config, timeouts *config.Timeouts, rm oci.Manager, store session.Store, opts ...Option) *Orchestrator {
	if timeouts == nil {
		timeouts = config.DefaultTimeouts()
	}
	o := &Orchestrator{
		rm:       rm,
		store:    store,
		cfg:      cfg,
		timeouts: timeouts,
		guard:    NewGuard(),
		metrics:  NewMetrics(),
		log:      logr.Discard(),
		phases:   DefaultPhases(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.observer == nil {
		o.observer = NewLogObserver(o.log)
	}
	return o
}

// Metrics returns the collectors the orchestrator records to.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Plan runs a plan job.
func (o *Orchestrator) Plan(ctx context.Context, sessionID, dir string, vars map[string]string) (*Result, error) {
	return o.Run(ctx, Request{SessionID: sessionID, Operation: OperationPlan, TerraformDir: dir, Variables: vars})
}

// Apply runs an auto-approved apply job.
func (o *Orchestrator) Apply(ctx context.Context, sessionID, dir string, vars map[string]string) (*Result, error) {
	return o.Run(ctx, Request{SessionID: sessionID, Operation: OperationApply, TerraformDir: dir, Variables: vars})
}

// Destroy runs an auto-approved destroy job.
func (o *Orchestrator) Destroy(ctx context.Context, sessionID, dir string, vars map[string]string) (*Result, error) {
	return o.Run(ctx, Request{SessionID: sessionID, Operation: OperationDestroy, TerraformDir: dir, Variables: vars})
}

// Run executes one provisioning call. Precondition failures are returned
// as errors before anything remote happens. Once the session is claimed,
// every failure is reported through the Result and the error is nil.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	op, err := ParseOperation(string(req.Operation))
	if err != nil {
		return nil, errdefs.InvalidInput("%v", err)
	}
	req.Operation = op
	if err := session.ValidateID(req.SessionID); err != nil {
		return nil, err
	}
	dir, err := o.resolveDir(req)
	if err != nil {
		return nil, err
	}

	sess, err := o.store.Load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Architecture == nil {
		return nil, errdefs.NotFound("architecture", req.SessionID)
	}
	if err := o.cfg.RequireProvisioning(); err != nil {
		return nil, errdefs.Precondition("%v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errdefs.Precondition("terraform directory %s does not exist; synthesize the architecture first", dir)
	}

	release, err := o.guard.TryAcquire(req.SessionID)
	if err != nil {
		o.reject(req.SessionID, err)
		return nil, err
	}
	defer release()

	// The store lock covers callers in other processes.
	if locker, ok := o.store.(session.Locker); ok {
		unlock, err := locker.TryLock(ctx, req.SessionID, o.leaseTTL(op))
		if err != nil {
			if errdefs.IsInProgress(err) {
				o.reject(req.SessionID, err)
			}
			return nil, err
		}
		defer unlock()
	}

	o.metrics.inFlight.Inc()
	defer o.metrics.inFlight.Dec()

	started := o.now()
	obs := o.observer.WithFields(map[string]string{"session": req.SessionID, "operation": string(op)})

	// Reload under the lock so a stack created by the previous call is seen.
	if fresh, err := o.store.Load(ctx, req.SessionID); err == nil {
		sess = fresh
	}

	pctx := &Context{
		Context:      ctx,
		Request:      req,
		TerraformDir: dir,
		Session:      sess,
		Store:        o.store,
		Config:       o.cfg,
		Timeouts:     o.timeouts,
		RM:           o.rm,
		Observer:     obs,
		State:        &State{},
	}
	runErr := RunPhases(pctx, o.phases)

	res := buildResult(pctx, runErr, o.timeouts)
	res.StartedAt = started
	res.FinishedAt = o.now()
	o.metrics.observe(op, res.Status, res.Duration())
	o.record(ctx, req.SessionID, res)
	return res, nil
}

func (o *Orchestrator) reject(sessionID string, err error) {
	o.metrics.rejected.Inc()
	o.observer.Event(Event{Type: EventRejected, Resource: sessionID, Message: err.Error()})
}

// leaseTTL outlasts the job deadline plus packaging and log retrieval.
func (o *Orchestrator) leaseTTL(op Operation) time.Duration {
	timeout := o.timeouts.Plan
	if op != OperationPlan {
		timeout = o.timeouts.Apply
	}
	return timeout + 10*time.Minute
}

// resolveDir rejects suspicious paths before touching the filesystem.
func (o *Orchestrator) resolveDir(req Request) (string, error) {
	if req.TerraformDir == "" {
		return session.TerraformDir(o.cfg.DataDir, req.SessionID), nil
	}
	dir := req.TerraformDir
	if strings.Contains(dir, "..") || strings.Contains(dir, "~") {
		return "", errdefs.InvalidInput("terraform directory %q must not contain '..' or '~'", dir)
	}
	if !filepath.IsAbs(dir) {
		return "", errdefs.InvalidInput("terraform directory %q must be an absolute path", dir)
	}
	return filepath.Clean(dir), nil
}

func buildResult(ctx *Context, runErr error, timeouts *config.Timeouts) *Result {
	st := ctx.State
	res := &Result{
		Operation: ctx.Request.Operation,
		SessionID: ctx.Session.ID,
		StackID:   st.StackID,
		Logs:      st.Logs,
		ExitCode:  1,
	}
	if st.Job != nil {
		res.JobID = st.Job.ID
	}

	switch {
	case runErr != nil:
		res.Status = StatusError
		if errors.Is(runErr, context.Canceled) {
			res.Status = StatusCanceled
		}
		res.Message = runErr.Error()
	case st.TimedOut:
		timeout := timeouts.Plan
		if ctx.Request.Operation != OperationPlan {
			timeout = timeouts.Apply
		}
		res.Status = StatusTimedOut
		res.Message = fmt.Sprintf("Job timed out after %v. Job ID: %s", timeout, res.JobID)
	case st.Job.LifecycleState == oci.JobSucceeded:
		res.Success = true
		res.Status = StatusSucceeded
		res.ExitCode = 0
		res.Summary = ExtractSummary(ctx.Request.Operation, st.Logs)
	default:
		res.Status = Status(st.Job.LifecycleState)
		res.Message = fmt.Sprintf("Job %s. Job ID: %s", st.Job.LifecycleState, res.JobID)
		if fd := st.Job.FailureDetails; fd != nil && fd.Message != "" {
			res.Message += fmt.Sprintf(" (%s: %s)", fd.Code, fd.Message)
		}
		res.Errors = ParseErrors(st.Logs)
	}
	return res
}

// record keeps the outcome on the session. Only the job fields are
// written over the stored copy so design edits made while the job ran
// survive. A failed save is logged only: the result already describes
// what happened remotely.
func (o *Orchestrator) record(ctx context.Context, sessionID string, res *Result) {
	job := &session.JobRecord{
		JobID:      res.JobID,
		Operation:  string(res.Operation),
		Status:     string(res.Status),
		Summary:    res.Summary,
		FinishedAt: res.FinishedAt,
	}
	_, err := session.Update(context.WithoutCancel(ctx), o.store, sessionID, func(s *session.Session) {
		s.LastJob = job
		s.UpdatedAt = res.FinishedAt
	})
	if err != nil {
		o.log.Error(err, "failed to record job on session", "session", sessionID, "job", res.JobID)
	}
}

// JobStatus fetches the state and log of one job.
func (o *Orchestrator) JobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errdefs.InvalidInput("job id is required")
	}
	job, err := o.rm.GetJob(ctx, jobID)
	if err != nil {
		if oci.IsNotFound(err) {
			nf := errdefs.NotFound("job", jobID)
			nf.Err = err
			return nil, nf
		}
		return nil, errdefs.Remote(err, "failed to get job %s", jobID)
	}

	status := &JobStatus{
		JobID:     job.ID,
		StackID:   job.StackID,
		Operation: string(job.Operation),
		State:     job.LifecycleState,
		Terminal:  job.LifecycleState.Terminal(),
	}
	if fd := job.FailureDetails; fd != nil {
		status.Failure = strings.TrimSpace(fd.Code + ": " + fd.Message)
	}

	logs, err := o.rm.GetJobLogs(ctx, jobID)
	if err != nil {
		status.Logs = fmt.Sprintf("(Failed to retrieve job logs for %s)", jobID)
	} else {
		status.Logs = logs
	}

	op := Operation(strings.ToLower(string(job.Operation)))
	switch job.LifecycleState {
	case oci.JobSucceeded:
		status.Summary = ExtractSummary(op, logs)
	case oci.JobFailed:
		status.Errors = ParseErrors(logs)
	}
	return status, nil
}
