package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends a generated document PDF
// through SMTP, behind the SMTP circuit breaker, with exponential backoff.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gescom/internal/infra"

	"github.com/rs/zerolog/log"
)

const maxEmailAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Sender delivers one message; *infra.Mailer implements it.
type Sender interface {
	SendDocument(to, subject, body, pdfPath string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	sender  Sender
	cb      *infra.CircuitBreaker
	backoff time.Duration
}

// NewEmailWorker creates an EmailWorker sending through sender, guarded by cb.
func NewEmailWorker(sender Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb, backoff: time.Second}
}

// Process sends the email. An open breaker or exhausted retries return an
// error so the job lands in the DLQ.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := withRetry(ctx, maxEmailAttempts, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.sender.SendDocument(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		})
		if errors.Is(err, infra.ErrCircuitOpen) || errors.Is(err, infra.ErrSMTPNonConfigure) {
			return permanent{err}
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed, retrying")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: document sent")
	return nil
}

// permanent marks an error that further attempts cannot fix.
type permanent struct{ error }

func (p permanent) Unwrap() error { return p.error }

// withRetry calls fn up to maxAttempts times, waiting base, 2·base, 4·base …
// between attempts. A permanent error stops immediately.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		var p permanent
		if errors.As(err, &p) {
			return p.error
		}
		lastErr = err
	}
	return lastErr
}
