package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/nova-events/backend/config"
	"github.com/nova-events/backend/pkg/queue"
)

// EmailProcessor delivers queued confirmation and welcome emails over SMTP.
// When no SMTP host is configured, jobs are logged and dropped.
type EmailProcessor struct {
	cfg    config.EmailConfig
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(cfg config.EmailConfig, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{cfg: cfg, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if p.cfg.SMTPHost == "" {
		p.logger.Info("smtp not configured, dropping email job",
			zap.String("job_id", job.ID),
			zap.String("email_type", payload.EmailType),
			zap.String("recipient", payload.RecipientEmail))
		return nil
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		p.cfg.FromName, p.cfg.FromAddress, payload.RecipientEmail, payload.Subject, body(payload))

	addr := fmt.Sprintf("%s:%d", p.cfg.SMTPHost, p.cfg.SMTPPort)
	var a smtp.Auth
	if p.cfg.SMTPUser != "" {
		a = smtp.PlainAuth("", p.cfg.SMTPUser, p.cfg.SMTPPass, p.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, a, p.cfg.FromAddress, []string{payload.RecipientEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	p.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

func body(p queue.EmailPayload) string {
	switch p.EmailType {
	case queue.EmailTypeRegistration:
		return fmt.Sprintf("Your registration for %q is confirmed. See you there!", p.EventTitle)
	case queue.EmailTypeWelcome:
		return "Your account has been created. Browse upcoming events and register any time."
	default:
		return p.Subject
	}
}

// Run consumes email jobs until ctx is cancelled. Failed jobs are retried
// and eventually dead-lettered by the queue.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("email job failed", zap.Error(err), zap.String("job_id", job.ID))
			_ = p.queue.Retry(ctx, job)
		}
	}
}
