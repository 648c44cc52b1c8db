package worker

import (
	"context"
	"log"

	"contacthub/internal/app/service"
)

type mailJob struct {
	recipient  string
	templateID string
	vars       map[string]string
}

// MailWorker decouples mail delivery from request handling. Sends are
// fire-and-forget: Enqueue never blocks the caller, and delivery failures
// are logged, not propagated.
type MailWorker struct {
	dispatcher service.Mailer
	jobs       chan mailJob
}

func NewMailWorker(dispatcher service.Mailer, queueSize int) *MailWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &MailWorker{
		dispatcher: dispatcher,
		jobs:       make(chan mailJob, queueSize),
	}
}

// Send implements service.Mailer by queueing the message for background
// delivery. A full queue drops the message with a warning; a confirmation
// mail is best-effort notification, never worth failing the request.
func (w *MailWorker) Send(_ context.Context, recipient, templateID string, vars map[string]string) error {
	select {
	case w.jobs <- mailJob{recipient: recipient, templateID: templateID, vars: vars}:
	default:
		log.Printf("WARN: mail queue full, dropping %q mail to %q", templateID, recipient)
	}
	return nil
}

func (w *MailWorker) Start(ctx context.Context) {
	log.Println("Mail worker started.")
	for {
		select {
		case <-ctx.Done():
			log.Println("Mail worker stopping...")
			return
		case job := <-w.jobs:
			if err := w.dispatcher.Send(ctx, job.recipient, job.templateID, job.vars); err != nil {
				log.Printf("ERROR: failed to send %q mail to %q: %v", job.templateID, job.recipient, err)
			}
		}
	}
}
