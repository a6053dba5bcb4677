package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foxseedlab/usterki/internal/webhook"
)

const (
	headerSchemaVersion  = "X-Handover-Schema-Version"
	headerIdempotencyKey = "Idempotency-Key"

	maxReportAttempts   = 2
	reportRetryDelay    = 500 * time.Millisecond
	maxErrorBodySnippet = 256
)

// HTTPSender posts handover reports. A report is sent at most once per
// handover from the receiver's point of view: retries reuse the handover ID
// as Idempotency-Key.
type HTTPSender struct {
	webhookURL string
	client     *http.Client
	retryDelay time.Duration
}

// NewHTTPSender returns a sender that posts handover reports as JSON. An empty
// URL turns every send into a no-op.
func NewHTTPSender(webhookURL string) webhook.Sender {
	return &HTTPSender{
		webhookURL: webhookURL,
		client:     &http.Client{},
		retryDelay: reportRetryDelay,
	}
}

func (s *HTTPSender) SendHandoverReport(ctx context.Context, payload webhook.HandoverReportPayload) error {
	if s.webhookURL == "" {
		return nil
	}
	if payload.SchemaVersion == "" {
		payload.SchemaVersion = webhook.HandoverReportSchemaVersion
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal handover report: %w", err)
	}

	for attempt := 1; ; attempt++ {
		retryable, err := s.post(ctx, payload, body)
		if err == nil {
			return nil
		}
		if !retryable || attempt == maxReportAttempts {
			return fmt.Errorf("send handover report %s: %w", payload.HandoverID, err)
		}
		slog.Warn("handover report webhook failed; retrying", "error", err, "handover_id", payload.HandoverID, "attempt", attempt)
		select {
		case <-ctx.Done():
			return fmt.Errorf("send handover report %s: %w", payload.HandoverID, ctx.Err())
		case <-time.After(s.retryDelay):
		}
	}
}

// post sends one attempt and reports whether a failure is worth retrying.
func (s *HTTPSender) post(ctx context.Context, payload webhook.HandoverReportPayload, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerSchemaVersion, payload.SchemaVersion)
	if payload.HandoverID != "" {
		req.Header.Set(headerIdempotencyKey, payload.HandoverID)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if isHTTPSuccessStatus(resp.StatusCode) {
		return false, nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySnippet))
	err = fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	return isRetryableStatus(resp.StatusCode), err
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
