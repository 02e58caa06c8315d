package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/levels-ingest/internal/common"
)

// UpstreamKind classifies a failed model call so callers can pick a retry policy.
type UpstreamKind string

const (
	UpstreamRateLimited    UpstreamKind = "RATE_LIMITED"    // 429, retry later
	UpstreamQuotaExhausted UpstreamKind = "QUOTA_EXHAUSTED" // 402, credits are gone
	UpstreamFailed         UpstreamKind = "FAILED"
)

const maxDetail = 300

// UpstreamError is a non-2xx reply or a transport failure. Status is 0 for transport errors.
type UpstreamError struct {
	Kind   UpstreamKind
	Status int
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream %s: %s", strings.ToLower(string(e.Kind)), e.Detail)
	}
	return fmt.Sprintf("upstream %s (status %d): %s", strings.ToLower(string(e.Kind)), e.Status, e.Detail)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{common.ErrUpstream}
	}
	return []error{common.ErrUpstream, e.Err}
}

// NewStatusError builds an UpstreamError from an HTTP status and response body.
func NewStatusError(status int, body []byte) *UpstreamError {
	kind := UpstreamFailed
	switch status {
	case http.StatusTooManyRequests:
		kind = UpstreamRateLimited
	case http.StatusPaymentRequired:
		kind = UpstreamQuotaExhausted
	}
	return &UpstreamError{Kind: kind, Status: status, Detail: diagnostic(body)}
}

// NewTransportError wraps a failure that produced no HTTP status.
func NewTransportError(err error) *UpstreamError {
	return &UpstreamError{Kind: UpstreamFailed, Detail: truncate(err.Error()), Err: err}
}

// diagnostic prefers the provider's error.message and falls back to the body text.
func diagnostic(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return truncate(envelope.Error.Message)
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return truncate(s)
	}
	return http.StatusText(http.StatusBadGateway)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxDetail {
		cut := maxDetail
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "…"
	}
	return s
}
