// Package dispatch fires HTTP requests against targets and classifies the
// results. Each call to Dispatch returns a fully populated Outcome that the
// run executor records as an attempt.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/domain/model"
)

const (
	// maxErrorMessageLen caps stored transport error messages.
	maxErrorMessageLen = 500

	defaultMaxResponseBytes = 10 << 20
)

// Request describes a single outbound HTTP request.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Outcome captures the measured result of one request, success or failure.
// ErrorType is nil exactly when the response status was in [200, 400).
type Outcome struct {
	StatusCode        *int
	LatencyMS         float64
	ResponseSizeBytes int
	ErrorType         *model.ErrorType
	ErrorMessage      *string
	StartedAt         time.Time
	CompletedAt       time.Time
}

// Succeeded reports whether the request completed with a non-error outcome.
func (o *Outcome) Succeeded() bool {
	return o.ErrorType == nil
}

// Options configures a Dispatcher.
type Options struct {
	// Client is the HTTP client used for outbound requests. Per-request
	// timeouts come from Request.Timeout, so the client itself carries none.
	Client *http.Client
	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64
	Clock            data.Clock
}

// Dispatcher sends HTTP requests and classifies their outcomes.
type Dispatcher struct {
	client           *http.Client
	maxResponseBytes int64
	clock            data.Clock
}

// New creates a Dispatcher from the given options, filling in defaults.
func New(opts Options) *Dispatcher {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = defaultMaxResponseBytes
	}
	if opts.Clock == nil {
		opts.Clock = data.RealClock{}
	}
	return &Dispatcher{
		client:           opts.Client,
		maxResponseBytes: opts.MaxResponseBytes,
		clock:            opts.Clock,
	}
}

// Dispatch fires one request and returns its classified outcome. Transport
// failures never surface as errors; they are folded into the Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	outcome := Outcome{StartedAt: d.clock.Now()}
	start := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := d.buildRequest(ctx, req)
	if err != nil {
		d.recordError(&outcome, model.ErrorTypeUnknown, err.Error(), start)
		return outcome
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.recordError(&outcome, classifyTransportError(err), err.Error(), start)
		return outcome
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxResponseBytes+1))
	if err != nil {
		d.recordError(&outcome, classifyTransportError(err), err.Error(), start)
		return outcome
	}
	if int64(len(body)) > d.maxResponseBytes {
		d.recordError(&outcome, model.ErrorTypeUnknown, "response too large", start)
		return outcome
	}

	status := resp.StatusCode
	outcome.StatusCode = &status
	outcome.LatencyMS = elapsedMS(start)
	outcome.ResponseSizeBytes = len(body)
	outcome.CompletedAt = d.clock.Now()

	switch {
	case status >= 400 && status < 500:
		setError(&outcome, model.ErrorTypeHTTP4xx, fmt.Sprintf("HTTP %d", status))
	case status >= 500:
		setError(&outcome, model.ErrorTypeHTTP5xx, fmt.Sprintf("HTTP %d", status))
	}
	return outcome
}

func (d *Dispatcher) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

func (d *Dispatcher) recordError(outcome *Outcome, errType model.ErrorType, msg string, start time.Time) {
	outcome.LatencyMS = elapsedMS(start)
	outcome.CompletedAt = d.clock.Now()
	setError(outcome, errType, msg)
}

func setError(outcome *Outcome, errType model.ErrorType, msg string) {
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	outcome.ErrorType = &errType
	outcome.ErrorMessage = &msg
}

// classifyTransportError maps a client error to an error type. First match
// wins: timeout, then DNS, then connection, then unknown.
func classifyTransportError(err error) model.ErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrorTypeTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return model.ErrorTypeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrorTypeTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.ErrorTypeDNS
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.ErrorTypeConnection
	}
	return model.ErrorTypeUnknown
}

// elapsedMS returns milliseconds since start rounded to two decimals,
// measured on the monotonic clock.
func elapsedMS(start time.Time) float64 {
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
