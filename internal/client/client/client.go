package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/client/metrics"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/bankfront/internal/client/client"

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Tokens is read for every protected request and cleared on 401/403.
	Tokens TokenStore
	// Bus receives events.AuthChanged after a forced logout.
	Bus *events.Bus
	// OnSessionExpired runs after a forced logout unless the request was
	// silent.
	OnSessionExpired func(ctx context.Context)

	Logger  logging.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &authTransport{
				base:      base,
				tokens:    opts.Tokens,
				bus:       opts.Bus,
				onExpired: opts.OnSessionExpired,
				logger:    opts.Logger,
				metrics:   opts.Metrics,
			},
		},
		logger:  opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}
}

// response is a received reply, whatever its status.
type response struct {
	status int
	env    envelope
}

// request describes one call. route is the path template used for metrics
// and span names; path is the concrete path.
type request struct {
	method string
	route  string
	path   string
	body   any
	header http.Header
}

// send performs r and returns the decoded reply. Only transport failures are
// returned as errors.
func (c *Client) send(ctx context.Context, r request) (resp *response, err error) {
	ctx, span := c.tracer.Start(ctx, r.method+" "+r.route, trace.WithSpanKind(trace.SpanKindClient))
	started := time.Now()
	defer func() {
		status := 0
		if resp != nil {
			status = resp.status
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= 400 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.End()
		c.metrics.APICall(r.route, status, time.Since(started))
	}()
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.route", r.route),
	)

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed", "route", r.route, "error", err)
		return nil, &APIError{Endpoint: r.route, Message: NetworkErrorMessage, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &APIError{Endpoint: r.route, Message: NetworkErrorMessage, Err: err}
	}

	return &response{status: httpResp.StatusCode, env: decodeEnvelope(raw)}, nil
}

// call performs r, maps error statuses and success:false to *APIError and
// decodes the data part into out.
func (c *Client) call(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}

	if resp.status >= 400 {
		msg := resp.env.Message
		if msg == "" {
			msg = FallbackMessage(resp.status)
		}
		return &APIError{Status: resp.status, Message: msg, Endpoint: r.route}
	}
	if resp.env.Failed() {
		msg := resp.env.Message
		if msg == "" {
			msg = "Request failed."
		}
		return &APIError{Status: resp.status, Message: msg, Endpoint: r.route}
	}

	if err := resp.env.decodeData(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.route, err)
	}
	return nil
}
