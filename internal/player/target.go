// Package player talks to VLC media players through their HTTP control
// interface.
//
// A Target is one VLC instance. A Group fans a command out to every Target
// concurrently. Both satisfy Recipient, so routing code does not care whether
// a message addresses one player or all of them.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"

	"evalgo.org/oscbridge/internal/metrics"
)

// StatusPath is the VLC HTTP interface endpoint that accepts control commands.
const StatusPath = "/requests/status.xml"

// DefaultTimeout bounds a single control request.
const DefaultTimeout = 500 * time.Millisecond

// ErrConfiguration is returned when the target list cannot be built.
var ErrConfiguration = errors.New("invalid target configuration")

// ErrTransport matches every TransportError.
var ErrTransport = errors.New("transport error")

// Recipient receives a formatted VLC query such as "command=pl_play&id=5".
// Failures are handled by the recipient itself; callers are never blocked
// longer than the underlying request timeout.
type Recipient interface {
	SendCommand(ctx context.Context, query string)
}

// Endpoint is the configuration of one VLC instance.
type Endpoint struct {
	URL      string
	Password string
}

// Options configures how targets issue requests.
type Options struct {
	// Timeout bounds each request; DefaultTimeout when zero.
	Timeout time.Duration

	// HTTPClient overrides the pooled client built from go-cleanhttp. It is
	// copied, so the caller's client is never modified.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// TransportError reports a request that did not complete.
type TransportError struct {
	Target int
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("target %d: request to %s failed: %v", e.Target, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Target is one VLC instance. It is immutable after construction and safe for
// concurrent use.
type Target struct {
	id       int
	baseURL  string
	password string

	client  *resty.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ Recipient = (*Target)(nil)

// NewTargets builds one Target per endpoint, numbered from 1 in list order.
// All targets share one HTTP client.
func NewTargets(endpoints []Endpoint, opts Options) ([]*Target, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("%w: no targets configured", ErrConfiguration)
	}

	client := newClient(opts)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	targets := make([]*Target, 0, len(endpoints))
	for i, ep := range endpoints {
		base := strings.TrimSuffix(strings.TrimSpace(ep.URL), "/")
		if base == "" {
			return nil, fmt.Errorf("%w: target %d has an empty URL", ErrConfiguration, i+1)
		}

		id := i + 1
		targets = append(targets, &Target{
			id:       id,
			baseURL:  base,
			password: ep.Password,
			client:   client,
			logger:   logger.With(slog.Int("target", id), slog.String("url", base)),
			metrics:  opts.Metrics,
		})
	}

	return targets, nil
}

func newClient(opts Options) *resty.Client {
	var hc *http.Client
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		hc = &c
	} else {
		hc = cleanhttp.DefaultPooledClient()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return resty.NewWithClient(hc).
		SetTimeout(timeout).
		SetDisableWarn(true)
}

// ID returns the 1-based position of the target in the configured list.
func (t *Target) ID() int {
	return t.id
}

// URL returns the base URL of the VLC HTTP interface.
func (t *Target) URL() string {
	return t.baseURL
}

// HasPassword reports whether requests carry basic auth.
func (t *Target) HasPassword() bool {
	return t.password != ""
}

// RequestURL returns the full control URL for query.
func (t *Target) RequestURL(query string) string {
	return t.baseURL + StatusPath + "?" + query
}

// Do issues the control request and returns the HTTP status code. A non-nil
// error is always a *TransportError. The response body is discarded.
func (t *Target) Do(ctx context.Context, query string) (int, error) {
	url := t.RequestURL(query)

	req := t.client.R().SetContext(ctx)
	if t.password != "" {
		req.SetBasicAuth("", t.password)
	}

	resp, err := req.Get(url)
	if err != nil {
		return 0, &TransportError{Target: t.id, URL: url, Err: err}
	}

	return resp.StatusCode(), nil
}

// SendCommand issues the request and logs the outcome. It never returns an
// error: one unreachable player must not affect any other.
func (t *Target) SendCommand(ctx context.Context, query string) {
	start := time.Now()
	status, err := t.Do(ctx, query)
	elapsed := time.Since(start)
	label := strconv.Itoa(t.id)

	switch {
	case err != nil:
		t.metrics.TargetRequest(label, metrics.ResultTransportError, elapsed)
		t.logger.Warn("target_request_failed",
			slog.String("query", query),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case status >= http.StatusBadRequest:
		t.metrics.TargetRequest(label, metrics.ResultHTTPError, elapsed)
		t.logger.Warn("target_request_rejected",
			slog.String("query", query),
			slog.Int("status", status),
			slog.Duration("elapsed", elapsed),
		)
	default:
		t.metrics.TargetRequest(label, metrics.ResultOK, elapsed)
		t.logger.Debug("target_request_sent",
			slog.String("query", query),
			slog.Int("status", status),
			slog.Duration("elapsed", elapsed),
		)
	}
}
