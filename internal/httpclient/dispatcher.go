package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ericnishio/scribe-adapter/internal/metrics"
	"github.com/ericnishio/scribe-adapter/internal/rate"
)

// Backoff returns the retry sleep duration for the given attempt number.
func Backoff(attempt int) time.Duration {
	switch attempt {
	case 0:
		return 100 * time.Millisecond
	case 1:
		return 250 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// TokenSource supplies the current access token value, if one is valid right now.
// An expired or absent token reports ok=false.
type TokenSource interface {
	CurrentToken() (string, bool)
}

// Descriptor describes one outbound request to the Scribe platform.
type Descriptor struct {
	Op           string            // short operation name for logs/metrics, e.g. "fetch_post"
	Method       string            // http.MethodGet, http.MethodPost, ...
	Endpoint     string            // path joined onto the base URL by plain concatenation
	Payload      any               // JSON-encoded when non-nil
	RequiresAuth bool              // attach a bearer token if one is valid
	Header       map[string]string // extra headers, set verbatim
	RateKey      string            // rate limiter bucket; empty skips limiting
}

// Dispatcher executes described requests against a fixed base URL, attaching
// authorization only when the descriptor asks for it and a valid token exists.
// Base configuration is fixed at construction and never mutated afterwards.
type Dispatcher struct {
	logger     *zap.Logger
	baseURL    string
	http       *http.Client
	tokens     TokenSource
	rateMgr    *rate.Manager
	retryMax   int
	failClosed bool
}

// New creates a Dispatcher. retryMax is the number of extra attempts on 5xx or
// network failures; 0 means a single attempt with the failure surfaced as-is.
// failClosed rejects authenticated descriptors with ErrNotAuthenticated when no
// valid token is held, instead of sending the request without a header.
func New(
	logger *zap.Logger,
	baseURL string,
	httpClient *http.Client,
	tokens TokenSource,
	rateMgr *rate.Manager,
	retryMax int,
	failClosed bool,
) *Dispatcher {
	return &Dispatcher{
		logger:     logger,
		baseURL:    baseURL,
		http:       httpClient,
		tokens:     tokens,
		rateMgr:    rateMgr,
		retryMax:   retryMax,
		failClosed: failClosed,
	}
}

// Do executes the described request and returns the raw response body.
// The target URL is baseURL + Endpoint, concatenated verbatim.
func (d *Dispatcher) Do(ctx context.Context, desc Descriptor) ([]byte, error) {
	if d.rateMgr != nil && desc.RateKey != "" {
		if err := d.rateMgr.Wait(ctx, desc.RateKey); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var payload []byte
	if desc.Payload != nil {
		data, err := json.Marshal(desc.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		payload = data
	}

	url := d.baseURL + desc.Endpoint
	op := desc.Op
	if op == "" {
		op = desc.Endpoint
	}

	var lastErr error
	for attempt := 0; attempt <= d.retryMax; attempt++ {
		req, err := d.buildRequest(ctx, desc, url, payload)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := d.http.Do(req)
		if err != nil {
			lastErr = err
			metrics.IncScribeRequest(op, desc.Method, "transport_error")
			d.logger.Warn("dispatch.request_failed",
				zap.String("operation", op),
				zap.String("url", url),
				zap.Error(err),
				zap.Int("attempt", attempt))
			if attempt < d.retryMax {
				time.Sleep(Backoff(attempt))
				continue
			}
			return nil, err
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		elapsed := time.Since(start)

		metrics.ObserveDuration(metrics.ScribeRequestDuration, start, op, desc.Method)
		metrics.IncScribeRequest(op, desc.Method, strconv.Itoa(resp.StatusCode))

		if readErr != nil {
			return nil, fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode >= 500 {
			lastErr = &StatusError{Status: resp.StatusCode, URL: url, Body: body}
			d.logger.Warn("dispatch.server_error",
				zap.String("operation", op),
				zap.Int("status", resp.StatusCode),
				zap.String("url", url),
				zap.Duration("latency", elapsed))
			if attempt < d.retryMax {
				time.Sleep(Backoff(attempt))
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode >= 400 {
			d.logger.Warn("dispatch.client_error",
				zap.String("operation", op),
				zap.Int("status", resp.StatusCode),
				zap.String("url", url),
				zap.String("body", string(body)))
			return nil, &StatusError{Status: resp.StatusCode, URL: url, Body: body}
		}

		d.logger.Debug("dispatch.success",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))

		return body, nil
	}

	return nil, lastErr
}

// DoJSON executes the described request and JSON-decodes the response body into out.
// A nil out or empty body skips decoding.
func (d *Dispatcher) DoJSON(ctx context.Context, desc Descriptor, out any) error {
	body, err := d.Do(ctx, desc)
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			d.logger.Warn("dispatch.decode_failed",
				zap.String("operation", desc.Op),
				zap.Error(err),
				zap.String("body", string(body)))
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

// buildRequest assembles the http.Request for one attempt. Requests are rebuilt
// per attempt so retried bodies start from a fresh reader.
func (d *Dispatcher) buildRequest(ctx context.Context, desc Descriptor, url string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range desc.Header {
		req.Header.Set(k, v)
	}

	if desc.RequiresAuth {
		var token string
		var ok bool
		if d.tokens != nil {
			token, ok = d.tokens.CurrentToken()
		}
		switch {
		case ok:
			req.Header.Set("Authorization", "Bearer "+token)
		case d.failClosed:
			return nil, ErrNotAuthenticated
		default:
			// No valid token: the call goes out with no Authorization header at all.
			d.logger.Debug("dispatch.unauthenticated_call",
				zap.String("operation", desc.Op),
				zap.String("url", url))
		}
	}

	return req, nil
}
