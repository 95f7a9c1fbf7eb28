package oci

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/matryer/resync"

	"github.com/sogawa-yk/Galley/internal/util/retry"
)

// Manager is the subset of Resource Manager galley uses.
type Manager interface {
	CreateStack(ctx context.Context, in CreateStackInput) (*Stack, error)
	UpdateStack(ctx context.Context, stackID string, in UpdateStackInput) (*Stack, error)
	GetStack(ctx context.Context, stackID string) (*Stack, error)
	CreateJob(ctx context.Context, in CreateJobInput) (*Job, error)
	GetJob(ctx context.Context, jobID string) (*Job, error)
	GetJobLogs(ctx context.Context, jobID string) (string, error)
	// Identity returns the tenancy and region of the signing credentials.
	Identity(ctx context.Context) (Identity, error)
}

var _ Manager = (*Client)(nil)

// Client implements Manager over HTTPS.
type Client struct {
	region     string
	auth       AuthConfig
	baseURL    string
	httpClient *http.Client
	signer     Signer
	identity   Identity
	retryOpts  []retry.Option
	log        logr.Logger

	mu      sync.Mutex
	once    resync.Once
	http    *resty.Client
	initErr error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the regional endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSigner uses a prebuilt signer instead of reading credentials.
func WithSigner(s Signer, id Identity) Option {
	return func(c *Client) {
		c.signer = s
		c.identity = id
	}
}

// WithRetry adds retry options for retryable failures.
func WithRetry(opts ...retry.Option) Option {
	return func(c *Client) {
		c.retryOpts = append(c.retryOpts, opts...)
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New returns a Client for region. Credentials are read on first use.
func New(region string, auth AuthConfig, opts ...Option) *Client {
	c := &Client{
		region:     region,
		auth:       auth,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the Resource Manager base URL for region.
func Endpoint(region string) string {
	return fmt.Sprintf("https://resourcemanager.%s.oraclecloud.com/%s", region, APIVersion)
}

func (c *Client) init() (*resty.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.once.Do(func() {
		signer, id := c.signer, c.identity
		if signer == nil {
			var err error
			if signer, id, err = NewSigner(c.auth); err != nil {
				c.initErr = err
				return
			}
		}
		if c.region == "" {
			c.region = id.Region
		}
		if id.Region == "" {
			id.Region = c.region
		}
		if c.region == "" && c.baseURL == "" {
			c.initErr = fmt.Errorf("%w: no region configured", errAuth)
			return
		}
		c.identity = id

		base := c.baseURL
		if base == "" {
			base = Endpoint(c.region)
		}
		c.http = resty.NewWithClient(c.httpClient).
			SetBaseURL(base).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "galley").
			SetPreRequestHook(func(_ *resty.Client, r *http.Request) error {
				return signer.Sign(r)
			})
	})

	if c.initErr != nil {
		err := c.initErr
		c.initErr = nil
		c.once.Reset()
		return nil, err
	}
	return c.http, nil
}

// call runs one API request with retries. Mutating calls carry an
// opc-retry-token so a retried create is not applied twice.
func (c *Client) call(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	hc, err := c.init()
	if err != nil {
		return nil, err
	}

	retryToken := ""
	if method == http.MethodPost {
		retryToken = uuid.NewString()
	}

	var resp *resty.Response
	opts := append([]retry.Option{
		retry.WithMaxRetries(2),
		retry.WithRetryIf(IsRetryable),
		retry.WithNotify(func(err error, attempt int, next time.Duration) {
			c.log.V(1).Info("retrying resource manager call", "method", method, "path", path, "attempt", attempt, "backoff", next, "error", err.Error())
		}),
	}, c.retryOpts...)

	err = retry.WithExponentialBackoff(ctx, func() error {
		req := hc.R().SetContext(ctx).SetError(&ServiceError{})
		if retryToken != "" {
			req.SetHeader("opc-retry-token", retryToken)
		}
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
		if result != nil {
			req.SetResult(result)
		}
		r, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		if r.IsError() {
			return handleError(r)
		}
		resp = r
		return nil
	}, opts...)
	return resp, err
}

func handleError(resp *resty.Response) error {
	svcErr, ok := resp.Error().(*ServiceError)
	if !ok || svcErr == nil {
		svcErr = &ServiceError{}
	}
	svcErr.StatusCode = resp.StatusCode()
	svcErr.OpcRequestID = resp.Header().Get("opc-request-id")
	if svcErr.Message == "" && svcErr.Code == "" {
		svcErr.Message = strings.TrimSpace(resp.String())
	}
	return svcErr
}

// CreateStack creates a stack.
func (c *Client) CreateStack(ctx context.Context, in CreateStackInput) (*Stack, error) {
	stack := &Stack{}
	if _, err := c.call(ctx, http.MethodPost, "/stacks", in, stack); err != nil {
		return nil, fmt.Errorf("failed to create stack: %w", err)
	}
	return stack, nil
}

// UpdateStack replaces a stack's configuration and variables.
func (c *Client) UpdateStack(ctx context.Context, stackID string, in UpdateStackInput) (*Stack, error) {
	stack := &Stack{}
	if _, err := c.call(ctx, http.MethodPut, "/stacks/"+stackID, in, stack); err != nil {
		return nil, fmt.Errorf("failed to update stack %s: %w", stackID, err)
	}
	return stack, nil
}

// GetStack fetches a stack.
func (c *Client) GetStack(ctx context.Context, stackID string) (*Stack, error) {
	stack := &Stack{}
	if _, err := c.call(ctx, http.MethodGet, "/stacks/"+stackID, nil, stack); err != nil {
		return nil, fmt.Errorf("failed to get stack %s: %w", stackID, err)
	}
	return stack, nil
}

// CreateJob starts a job on a stack.
func (c *Client) CreateJob(ctx context.Context, in CreateJobInput) (*Job, error) {
	job := &Job{}
	if _, err := c.call(ctx, http.MethodPost, "/jobs", in, job); err != nil {
		return nil, fmt.Errorf("failed to create %s job: %w", strings.ToLower(string(in.JobOperationDetails.Operation)), err)
	}
	return job, nil
}

// GetJob fetches a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	job := &Job{}
	if _, err := c.call(ctx, http.MethodGet, "/jobs/"+jobID, nil, job); err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	return job, nil
}

// GetJobLogs returns the raw Terraform log of a job.
func (c *Client) GetJobLogs(ctx context.Context, jobID string) (string, error) {
	resp, err := c.call(ctx, http.MethodGet, "/jobs/"+jobID+"/logs/content", nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get logs of job %s: %w", jobID, err)
	}
	return resp.String(), nil
}

// Identity returns the tenancy and region of the signing credentials.
func (c *Client) Identity(_ context.Context) (Identity, error) {
	if _, err := c.init(); err != nil {
		return Identity{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, nil
}
