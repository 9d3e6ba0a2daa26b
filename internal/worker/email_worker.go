package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends shift reports to the
// administrator address via SMTP.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cochera/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// EmailSender is satisfied by *infra.Mailer.
type EmailSender interface {
	SendReporte(to, subject, body, pdfPath string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer EmailSender
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer EmailSender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends the email with up to 3 attempts. A mailer without SMTP host is
// not an error: the job is dropped with a warning.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := withRetry(ctx, 3, func(attempt int) error {
		err := w.mailer.SendReporte(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		if err != nil && !errors.Is(err, infra.ErrMailerDisabled) {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		}
		return err
	})
	if errors.Is(err, infra.ErrMailerDisabled) {
		log.Warn().Str("to", payload.ToEmail).Msg("email_worker: SMTP not configured, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: report sent")
	return nil
}
