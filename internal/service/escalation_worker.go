package service

import (
	"context"
	"log"
	"sync"
	"time"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

// EscalationConfig holds settings for the delivery escalation worker.
type EscalationConfig struct {
	SweepInterval time.Duration
	Window        time.Duration
	BatchSize     int
	Concurrency   int
}

// EscalationWorker periodically sweeps for forms whose applicants never chose
// a delivery method within the window and alerts the staff4 desk. Escalation
// authority itself stays lazy; the sweep only produces notifications and
// audit entries.
type EscalationWorker struct {
	formRepo  port.FormRepository
	auditRepo port.FormAuditRepository
	userRepo  port.UserRepository
	notifier  port.Notifier
	cfg       EscalationConfig
	wg        sync.WaitGroup
}

// NewEscalationWorker creates a new EscalationWorker.
func NewEscalationWorker(
	formRepo port.FormRepository,
	auditRepo port.FormAuditRepository,
	userRepo port.UserRepository,
	notifier port.Notifier,
	cfg EscalationConfig,
) *EscalationWorker {
	return &EscalationWorker{
		formRepo:  formRepo,
		auditRepo: auditRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Start runs the sweep loop until ctx is canceled. It blocks until all
// in-flight notification goroutines have finished.
func (w *EscalationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("escalationWorker: started (sweep=%s, window=%s, concurrency=%d)",
		w.cfg.SweepInterval, w.cfg.Window, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("escalationWorker: shutting down, waiting for in-flight notifications...")
			w.wg.Wait()
			log.Printf("escalationWorker: shutdown complete")
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-w.cfg.Window)
			forms, err := w.formRepo.ListEscalationDue(ctx, cutoff, w.cfg.BatchSize)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("escalationWorker: ListEscalationDue error: %v", err)
				continue
			}

			for i := range forms {
				form := forms[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Fresh context so in-flight sends finish during shutdown.
					sendCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()
					w.escalate(sendCtx, &form)
				}()
			}
		}
	}
}

func (w *EscalationWorker) escalate(ctx context.Context, form *domain.Form) {
	log.Printf("escalationWorker: delivery selection overdue for form %s", form.ID)

	// Stamp the form so the next sweep skips it. Losing the CAS means a
	// concurrent mutation got there first; the form will be re-evaluated on
	// the next sweep with fresh state.
	now := time.Now().UTC()
	next := form.Clone()
	next.Delivery.EscalatedAt = &now
	next.UpdatedAt = now
	if err := w.formRepo.Update(ctx, next, form.Version); err != nil {
		log.Printf("escalationWorker: stamp form %s: %v", form.ID, err)
		return
	}

	entry := &domain.FormAuditEntry{
		FormID: form.ID,
		Action: string(domain.AuditDeliveryEscalated),
	}
	if err := w.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("escalationWorker: audit for form %s: %v", form.ID, err)
	}

	// Alert everyone on the staff4 desk; they hold the fallback authority.
	users, _, err := w.userRepo.List(ctx, 0, 500)
	if err != nil {
		log.Printf("escalationWorker: list users: %v", err)
		return
	}
	for i := range users {
		if users[i].Role != domain.RoleStaff4 || !users[i].IsActive {
			continue
		}
		if err := w.notifier.SendDeliveryEscalation(ctx, users[i].Email, users[i].FullName, form.ID); err != nil {
			log.Printf("escalationWorker: notify %s for form %s: %v", users[i].Email, form.ID, err)
		}
	}
}
