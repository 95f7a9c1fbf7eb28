package provisioning

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogawa-yk/Galley/internal/architecture"
	"github.com/sogawa-yk/Galley/internal/config"
	"github.com/sogawa-yk/Galley/internal/errdefs"
	"github.com/sogawa-yk/Galley/internal/platform/oci"
	"github.com/sogawa-yk/Galley/internal/session"
	"github.com/sogawa-yk/Galley/internal/util/labels"
)

type fixture struct {
	orch  *Orchestrator
	store *session.FileStore
	cfg   *config.Config
	id    string
	dir   string
}

func testTimeouts() *config.Timeouts {
	t := config.DefaultTimeouts()
	t.JobPoll = time.Millisecond
	t.Plan = 2 * time.Second
	t.Apply = 2 * time.Second
	return t
}

func newFixture(t *testing.T, rm oci.Manager, timeouts *config.Timeouts) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Region = "ap-osaka-1"
	cfg.WorkCompartmentID = "ocid1.compartment.oc1..work"

	store := session.NewFileStore(session.Root(cfg.DataDir))
	sess := session.New(time.Now().UTC())
	arch, err := architecture.New([]architecture.Component{
		{ID: "vcn", ServiceType: "vcn", DisplayName: "main"},
	}, nil)
	require.NoError(t, err)
	sess.Architecture = arch
	require.NoError(t, store.Save(context.Background(), sess))

	dir := session.TerraformDir(cfg.DataDir, sess.ID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte("provider \"oci\" {}\n"), 0o644))

	return &fixture{
		orch:  NewOrchestrator(cfg, timeouts, rm, store),
		store: store,
		cfg:   cfg,
		id:    sess.ID,
		dir:   dir,
	}
}

func TestRunCreatesThenUpdatesStack(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		created []oci.CreateStackInput
		updated []string
		jobs    []oci.CreateJobInput
	)
	rm := &oci.MockClient{
		CreateStackFunc: func(_ context.Context, in oci.CreateStackInput) (*oci.Stack, error) {
			mu.Lock()
			defer mu.Unlock()
			created = append(created, in)
			return &oci.Stack{ID: "ocid1.ormstack.oc1..one"}, nil
		},
		UpdateStackFunc: func(_ context.Context, id string, in oci.UpdateStackInput) (*oci.Stack, error) {
			mu.Lock()
			defer mu.Unlock()
			updated = append(updated, id+" "+in.DisplayName)
			return &oci.Stack{ID: id}, nil
		},
		CreateJobFunc: func(_ context.Context, in oci.CreateJobInput) (*oci.Job, error) {
			mu.Lock()
			defer mu.Unlock()
			jobs = append(jobs, in)
			return &oci.Job{ID: "ocid1.ormjob.oc1..job", LifecycleState: oci.JobAccepted}, nil
		},
		GetJobLogsFunc: func(context.Context, string) (string, error) {
			return "Plan: 2 to add, 0 to change, 0 to destroy.", nil
		},
	}
	f := newFixture(t, rm, testTimeouts())
	ctx := context.Background()

	res, err := f.orch.Plan(ctx, f.id, "", map[string]string{"region": "us-ashburn-1", "function_image": "img"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, "2 to add, 0 to change, 0 to destroy", res.Summary)
	assert.Equal(t, "ocid1.ormstack.oc1..one", res.StackID)
	assert.Equal(t, "ocid1.ormjob.oc1..job", res.JobID)
	assert.Equal(t, 0, res.ExitCode)

	require.Len(t, created, 1)
	assert.Equal(t, "galley-"+f.id, created[0].DisplayName)
	assert.Equal(t, "ocid1.compartment.oc1..work", created[0].CompartmentID)
	assert.Equal(t, config.DefaultTerraformVersion, created[0].TerraformVersion)
	assert.Equal(t, map[string]string{
		"region":           "us-ashburn-1",
		"compartment_ocid": "ocid1.compartment.oc1..work",
		"tenancy_ocid":     "ocid1.tenancy.oc1..mock",
		"function_image":   "img",
	}, created[0].Variables)
	assert.Equal(t, "ZIP_UPLOAD", created[0].ConfigSource.ConfigSourceType)
	assert.True(t, labels.IsManaged(created[0].FreeformTags, f.id))

	sess, err := f.store.Load(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, "ocid1.ormstack.oc1..one", sess.StackID)
	require.NotNil(t, sess.LastJob)
	assert.Equal(t, "plan", sess.LastJob.Operation)
	assert.Equal(t, "SUCCEEDED", sess.LastJob.Status)

	res, err = f.orch.Apply(ctx, f.id, f.dir, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.Len(t, created, 1, "stack is never recreated")
	assert.Equal(t, []string{"ocid1.ormstack.oc1..one galley-" + f.id}, updated)
	require.Len(t, jobs, 2)
	assert.Equal(t, oci.OperationPlan, jobs[0].JobOperationDetails.Operation)
	assert.Empty(t, jobs[0].JobOperationDetails.ExecutionPlanStrategy)
	assert.Equal(t, oci.OperationApply, jobs[1].JobOperationDetails.Operation)
	assert.Equal(t, "apply", jobs[1].FreeformTags[labels.KeyOperation])
	assert.Equal(t, "AUTO_APPROVED", jobs[1].JobOperationDetails.ExecutionPlanStrategy)
}

func TestRunNoChangesPlan(t *testing.T) {
	t.Parallel()

	rm := &oci.MockClient{
		GetJobLogsFunc: func(context.Context, string) (string, error) {
			return "No changes. Your infrastructure matches the configuration.", nil
		},
	}
	f := newFixture(t, rm, testTimeouts())

	res, err := f.orch.Plan(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, NoChangesSummary, res.Summary)
}

func TestRunFailedJob(t *testing.T) {
	t.Parallel()

	rm := &oci.MockClient{
		GetJobFunc: func(_ context.Context, id string) (*oci.Job, error) {
			return &oci.Job{
				ID:             id,
				LifecycleState: oci.JobFailed,
				FailureDetails: &oci.FailureDetails{Code: "TERRAFORM_EXECUTION_ERROR", Message: "apply failed"},
			}, nil
		},
		GetJobLogsFunc: func(context.Context, string) (string, error) {
			return "Error: Missing required argument\n\n  on resources.tf line 7, in resource:\n", nil
		},
	}
	f := newFixture(t, rm, testTimeouts())

	res, err := f.orch.Apply(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Message, "Job FAILED. Job ID: ocid1.ormjob.oc1..mock")
	assert.Contains(t, res.Message, "apply failed")
	assert.Equal(t, []TerraformError{{File: "resources.tf", Line: 7, Message: "Missing required argument"}}, res.Errors)
	assert.Empty(t, res.Summary)
}

func TestRunTimesOutAndStillFetchesLogs(t *testing.T) {
	t.Parallel()

	timeouts := testTimeouts()
	timeouts.Plan = 50 * time.Millisecond
	logsFetched := make(chan string, 1)
	rm := &oci.MockClient{
		GetJobFunc: func(_ context.Context, id string) (*oci.Job, error) {
			return &oci.Job{ID: id, LifecycleState: oci.JobInProgress}, nil
		},
		GetJobLogsFunc: func(_ context.Context, id string) (string, error) {
			logsFetched <- id
			return "Refreshing state...", nil
		},
	}
	f := newFixture(t, rm, timeouts)

	res, err := f.orch.Plan(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StatusTimedOut, res.Status)
	assert.Equal(t, "Job timed out after 50ms. Job ID: ocid1.ormjob.oc1..mock", res.Message)
	assert.Equal(t, "Refreshing state...", res.Logs)
	assert.Equal(t, "ocid1.ormjob.oc1..mock", <-logsFetched)
}

func TestRunLogFetchFailure(t *testing.T) {
	t.Parallel()

	rm := &oci.MockClient{
		GetJobLogsFunc: func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		},
	}
	f := newFixture(t, rm, testTimeouts())

	res, err := f.orch.Destroy(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "(Failed to retrieve job logs for ocid1.ormjob.oc1..mock)", res.Logs)
	assert.Empty(t, res.Summary)
}

func TestRunRemoteErrorBecomesResult(t *testing.T) {
	t.Parallel()

	rm := &oci.MockClient{
		CreateStackFunc: func(context.Context, oci.CreateStackInput) (*oci.Stack, error) {
			return nil, &oci.ServiceError{StatusCode: http.StatusBadRequest, Code: "InvalidParameter", Message: "bad zip"}
		},
	}
	f := newFixture(t, rm, testTimeouts())

	res, err := f.orch.Plan(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "bad zip")
	assert.Empty(t, res.JobID)

	sess, err := f.store.Load(context.Background(), f.id)
	require.NoError(t, err)
	assert.Empty(t, sess.StackID)
	require.NotNil(t, sess.LastJob)
	assert.Equal(t, "ERROR", sess.LastJob.Status)
}

func TestRunTenancyLookupFailure(t *testing.T) {
	t.Parallel()

	var vars map[string]string
	rm := &oci.MockClient{
		IdentityFunc: func(context.Context) (oci.Identity, error) {
			return oci.Identity{}, errors.New("no identity")
		},
		CreateStackFunc: func(_ context.Context, in oci.CreateStackInput) (*oci.Stack, error) {
			vars = in.Variables
			return &oci.Stack{ID: "stack"}, nil
		},
	}
	f := newFixture(t, rm, testTimeouts())

	_, err := f.orch.Plan(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", vars["tenancy_ocid"])
	assert.Equal(t, "ap-osaka-1", vars["region"])
}

func TestRunPreconditions(t *testing.T) {
	t.Parallel()

	rm := &oci.MockClient{
		CreateStackFunc: func(context.Context, oci.CreateStackInput) (*oci.Stack, error) {
			t.Error("no remote call expected")
			return nil, errors.New("unexpected")
		},
	}
	f := newFixture(t, rm, testTimeouts())
	ctx := context.Background()

	bare := session.New(time.Now())
	require.NoError(t, f.store.Save(ctx, bare))

	tests := []struct {
		name  string
		req   Request
		check func(error) bool
	}{
		{"bad operation", Request{SessionID: f.id, Operation: "import"}, errdefs.IsInvalidInput},
		{"bad session id", Request{SessionID: "../etc", Operation: OperationPlan}, errdefs.IsInvalidInput},
		{"relative dir", Request{SessionID: f.id, Operation: OperationPlan, TerraformDir: "tf"}, errdefs.IsInvalidInput},
		{"dot dot", Request{SessionID: f.id, Operation: OperationPlan, TerraformDir: "/tmp/../etc"}, errdefs.IsInvalidInput},
		{"tilde", Request{SessionID: f.id, Operation: OperationPlan, TerraformDir: "/home/~user"}, errdefs.IsInvalidInput},
		{"unknown session", Request{SessionID: "missing", Operation: OperationPlan}, errdefs.IsNotFound},
		{"no architecture", Request{SessionID: bare.ID, Operation: OperationPlan}, errdefs.IsNotFound},
		{"missing dir", Request{SessionID: f.id, Operation: OperationPlan, TerraformDir: filepath.Join(f.cfg.DataDir, "nope")}, errdefs.IsPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := f.orch.Run(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, tt.check(err), "unexpected kind for %v", err)
		})
	}
}

func TestRunRequiresProvisioningConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &oci.MockClient{}, testTimeouts())
	f.cfg.Region = ""

	_, err := f.orch.Plan(context.Background(), f.id, "", nil)
	require.Error(t, err)
	assert.True(t, errdefs.IsPrecondition(err))
	assert.Contains(t, err.Error(), "GALLEY_REGION")
}

func TestRunRejectsConcurrentCallOnSameSession(t *testing.T) {
	t.Parallel()

	unblock := make(chan struct{})
	rm := &oci.MockClient{
		GetJobFunc: func(ctx context.Context, id string) (*oci.Job, error) {
			select {
			case <-unblock:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &oci.Job{ID: id, LifecycleState: oci.JobSucceeded}, nil
		},
	}
	timeouts := testTimeouts()
	timeouts.Plan = 10 * time.Second
	f := newFixture(t, rm, timeouts)
	ctx := context.Background()

	done := make(chan *Result, 1)
	go func() {
		res, err := f.orch.Plan(ctx, f.id, "", nil)
		assert.NoError(t, err)
		done <- res
	}()
	require.Eventually(t, func() bool { return f.orch.guard.Held(f.id) }, 2*time.Second, time.Millisecond)

	_, err := f.orch.Apply(ctx, f.id, "", nil)
	require.Error(t, err)
	assert.True(t, errdefs.IsInProgress(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.orch.Metrics().rejected))

	close(unblock)
	res := <-done
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.False(t, f.orch.guard.Held(f.id))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.orch.Metrics().calls.WithLabelValues("plan", "SUCCEEDED")))
}

func TestRunRejectsCallFromAnotherOrchestrator(t *testing.T) {
	t.Parallel()

	unblock := make(chan struct{})
	polling := make(chan struct{})
	var once sync.Once
	rm := &oci.MockClient{
		GetJobFunc: func(ctx context.Context, id string) (*oci.Job, error) {
			once.Do(func() { close(polling) })
			select {
			case <-unblock:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &oci.Job{ID: id, LifecycleState: oci.JobSucceeded}, nil
		},
	}
	timeouts := testTimeouts()
	timeouts.Plan = 10 * time.Second
	f := newFixture(t, rm, timeouts)
	ctx := context.Background()

	// A second process sees the same data directory but none of the
	// first orchestrator's memory.
	other := NewOrchestrator(f.cfg, timeouts, rm, session.NewFileStore(session.Root(f.cfg.DataDir)))

	done := make(chan *Result, 1)
	go func() {
		res, err := f.orch.Plan(ctx, f.id, "", nil)
		assert.NoError(t, err)
		done <- res
	}()
	<-polling

	_, err := other.Apply(ctx, f.id, "", nil)
	require.Error(t, err)
	assert.True(t, errdefs.IsInProgress(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(other.Metrics().rejected))
	assert.False(t, other.guard.Held(f.id))

	close(unblock)
	res := <-done
	require.NotNil(t, res)
	assert.True(t, res.Success)

	res, err = other.Plan(ctx, f.id, "", nil)
	require.NoError(t, err, "the lock is released when the first call ends")
	assert.True(t, res.Success)
}

func TestRunKeepsDesignEditsMadeDuringJob(t *testing.T) {
	t.Parallel()

	var (
		store  *session.FileStore
		id     string
		edited sync.Once
	)
	addComponent := func(ctx context.Context, serviceType string) {
		sess, err := store.Load(ctx, id)
		require.NoError(t, err)
		_, err = sess.Architecture.AddComponent(architecture.Component{ServiceType: serviceType, DisplayName: serviceType})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, sess))
	}
	rm := &oci.MockClient{
		CreateStackFunc: func(ctx context.Context, _ oci.CreateStackInput) (*oci.Stack, error) {
			addComponent(ctx, "adb")
			return &oci.Stack{ID: "ocid1.ormstack.oc1..kept"}, nil
		},
		GetJobFunc: func(ctx context.Context, jobID string) (*oci.Job, error) {
			edited.Do(func() { addComponent(ctx, "compute") })
			return &oci.Job{ID: jobID, LifecycleState: oci.JobSucceeded}, nil
		},
	}
	f := newFixture(t, rm, testTimeouts())
	store, id = f.store, f.id

	res, err := f.orch.Plan(context.Background(), f.id, "", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)

	sess, err := f.store.Load(context.Background(), f.id)
	require.NoError(t, err)
	assert.Len(t, sess.Architecture.Components, 3)
	assert.Equal(t, "ocid1.ormstack.oc1..kept", sess.StackID)
	require.NotNil(t, sess.LastJob)
	assert.Equal(t, "SUCCEEDED", sess.LastJob.Status)
}

func TestRunReplacesMissingStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		getStack func(context.Context, string) (*oci.Stack, error)
		created  bool
		status   Status
	}{
		{
			name: "not found",
			getStack: func(context.Context, string) (*oci.Stack, error) {
				return nil, &oci.ServiceError{StatusCode: http.StatusNotFound, Code: "NotAuthorizedOrNotFound"}
			},
			created: true,
			status:  StatusSucceeded,
		},
		{
			name: "deleted",
			getStack: func(_ context.Context, id string) (*oci.Stack, error) {
				return &oci.Stack{ID: id, LifecycleState: oci.StackDeleted}, nil
			},
			created: true,
			status:  StatusSucceeded,
		},
		{
			name: "lookup failure",
			getStack: func(context.Context, string) (*oci.Stack, error) {
				return nil, &oci.ServiceError{StatusCode: http.StatusInternalServerError, Code: "InternalError"}
			},
			status: StatusError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				mu      sync.Mutex
				created int
			)
			rm := &oci.MockClient{
				GetStackFunc: tt.getStack,
				CreateStackFunc: func(context.Context, oci.CreateStackInput) (*oci.Stack, error) {
					mu.Lock()
					defer mu.Unlock()
					created++
					return &oci.Stack{ID: "ocid1.ormstack.oc1..new"}, nil
				},
				UpdateStackFunc: func(context.Context, string, oci.UpdateStackInput) (*oci.Stack, error) {
					t.Error("a missing stack must not be updated")
					return nil, errors.New("unexpected")
				},
			}
			f := newFixture(t, rm, testTimeouts())
			ctx := context.Background()
			_, err := session.Update(ctx, f.store, f.id, func(s *session.Session) {
				s.StackID = "ocid1.ormstack.oc1..old"
			})
			require.NoError(t, err)

			res, err := f.orch.Plan(ctx, f.id, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)

			sess, err := f.store.Load(ctx, f.id)
			require.NoError(t, err)
			if tt.created {
				assert.Equal(t, 1, created)
				assert.Equal(t, "ocid1.ormstack.oc1..new", sess.StackID)
			} else {
				assert.Zero(t, created)
				assert.Equal(t, "ocid1.ormstack.oc1..old", sess.StackID)
			}
		})
	}
}

func TestJobStatus(t *testing.T) {
	t.Parallel()

	rm := &oci.MockClient{
		GetJobFunc: func(_ context.Context, id string) (*oci.Job, error) {
			if id == "gone" {
				return nil, &oci.ServiceError{StatusCode: http.StatusNotFound, Code: "NotAuthorizedOrNotFound"}
			}
			return &oci.Job{ID: id, StackID: "stack", Operation: oci.OperationApply, LifecycleState: oci.JobSucceeded}, nil
		},
		GetJobLogsFunc: func(context.Context, string) (string, error) {
			return "Apply complete! Resources: 1 added, 0 changed, 0 destroyed.", nil
		},
	}
	f := newFixture(t, rm, testTimeouts())
	ctx := context.Background()

	status, err := f.orch.JobStatus(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, oci.JobSucceeded, status.State)
	assert.True(t, status.Terminal)
	assert.Equal(t, "APPLY", status.Operation)
	assert.Equal(t, "Apply complete! Resources: 1 added, 0 changed, 0 destroyed", status.Summary)

	_, err = f.orch.JobStatus(ctx, "gone")
	require.Error(t, err)
	assert.True(t, errdefs.IsNotFound(err))

	_, err = f.orch.JobStatus(ctx, " ")
	assert.True(t, errdefs.IsInvalidInput(err))
}
