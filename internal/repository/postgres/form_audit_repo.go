package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

type formAuditRepo struct {
	db *sqlx.DB
}

// NewFormAuditRepo creates a new PostgreSQL-backed FormAuditRepository.
func NewFormAuditRepo(db *sqlx.DB) port.FormAuditRepository {
	return &formAuditRepo{db: db}
}

func (r *formAuditRepo) Create(ctx context.Context, entry *domain.FormAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()

	query := `INSERT INTO form_audit (id, form_id, user_id, action, changes, created_at)
	          VALUES (:id, :form_id, :user_id, :action, :changes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("formAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *formAuditRepo) ListByForm(ctx context.Context, formID uuid.UUID, offset, limit int) ([]domain.FormAuditEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM form_audit WHERE form_id = $1", formID)
	if err != nil {
		return nil, 0, fmt.Errorf("formAuditRepo.ListByForm count: %w", err)
	}

	var entries []domain.FormAuditEntry
	err = r.db.SelectContext(ctx, &entries,
		"SELECT * FROM form_audit WHERE form_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		formID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("formAuditRepo.ListByForm: %w", err)
	}
	return entries, total, nil
}
