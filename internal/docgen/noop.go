package docgen

import (
	"context"
	"log"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

type noopGenerator struct{}

// NewNoopGenerator creates a DocumentGenerator that only logs. Rendering the
// final deed is handled by a separate system; this keeps the lock-time hook
// observable in environments without it.
func NewNoopGenerator() port.DocumentGenerator {
	return &noopGenerator{}
}

func (g *noopGenerator) EnqueueGeneration(_ context.Context, form *domain.Form) error {
	log.Printf("[NOOP DOCGEN] Form %s (%s) locked; document generation requested", form.ID, form.ServiceType)
	return nil
}
