// Package proxy forwards booking traffic to the downstream booking service
// and classifies its failures into the gateway's error taxonomy. It never
// retries: booking creation is not idempotent downstream, and the caller
// decides what a retry means.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "revamp/pkg/errors"
	"revamp/pkg/logger"
)

// Authorization is the only client header forwarded downstream. Everything
// else is gateway-internal or re-derived.
var forwardedHeaders = []string{"Authorization"}

// downstreamBasePath is the booking service's API mount. The handler strips
// the public /api/bookings prefix from inbound paths; the downstream service
// serves its API under the same segment, so it is re-joined here.
const downstreamBasePath = "/api/bookings"

type Proxy struct {
	baseURL     string
	serviceName string
	client      *http.Client
	log         *logger.Logger
}

// Result is a downstream response the gateway passes through verbatim.
type Result struct {
	StatusCode int
	Body       []byte
}

func New(baseURL, serviceName string, timeout time.Duration, log *logger.Logger) *Proxy {
	return &Proxy{
		baseURL:     baseURL,
		serviceName: serviceName,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Forward sends one request downstream. path is the remainder after the
// public prefix strip, starts with "/", and may carry a query string; body
// may be nil. On failure the returned error is an AppError whose message
// never contains the downstream URL.
func (p *Proxy) Forward(ctx context.Context, method, path string, body []byte, inbound http.Header) (*Result, error) {
	var reqBody io.Reader
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+downstreamBasePath+path, reqBody)
	if err != nil {
		return nil, apperrors.Internal("Failed to build downstream request", err)
	}

	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, name := range forwardedHeaders {
		if value := inbound.Get(name); value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.classifyTransportError(method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.InvalidUpstream(p.serviceName, err)
	}

	if len(respBody) > 0 && !json.Valid(respBody) {
		p.log.Error("Downstream returned a non-JSON body",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, apperrors.InvalidUpstream(p.serviceName, errors.New("response body is not valid JSON"))
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// ForwardJSON forwards a request and decodes the downstream response into
// target when the status is 2xx. Non-2xx responses come back as the Result
// with a nil error so callers can relay them.
func (p *Proxy) ForwardJSON(ctx context.Context, method, path string, body []byte, inbound http.Header, target any) (*Result, error) {
	result, err := p.Forward(ctx, method, path, body, inbound)
	if err != nil {
		return nil, err
	}

	if result.StatusCode >= 200 && result.StatusCode < 300 && target != nil {
		if len(result.Body) == 0 {
			return nil, apperrors.InvalidUpstream(p.serviceName, errors.New("expected a response body"))
		}
		if err := json.Unmarshal(result.Body, target); err != nil {
			return nil, apperrors.InvalidUpstream(p.serviceName, err)
		}
	}

	return result, nil
}

func (p *Proxy) classifyTransportError(method, path string, err error) error {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())

	if timedOut {
		p.log.Error("Downstream request timed out",
			"method", method,
			"path", path,
		)
		return apperrors.Timeout("The booking service did not respond in time")
	}

	p.log.Error("Downstream request failed",
		"method", method,
		"path", path,
		"error", err.Error(),
	)
	return apperrors.Unavailable(p.serviceName)
}
