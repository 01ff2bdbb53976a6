package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"deedflow/internal/domain"
	"deedflow/internal/port"
)

// formRow is the flat database shape of a form; the JSONB columns are mapped
// to and from the typed aggregate at this boundary.
type formRow struct {
	ID             uuid.UUID       `db:"id"`
	ServiceType    string          `db:"service_type"`
	SubmittedBy    uuid.UUID       `db:"submitted_by"`
	Fields         json.RawMessage `db:"fields"`
	Status         string          `db:"status"`
	Approvals      json.RawMessage `db:"approvals"`
	AdminNotes     json.RawMessage `db:"admin_notes"`
	Delivery       json.RawMessage `db:"delivery"`
	Version        int64           `db:"version"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	LastActivityAt time.Time       `db:"last_activity_at"`
	LastActivityBy uuid.UUID       `db:"last_activity_by"`
}

func toRow(form *domain.Form) (*formRow, error) {
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshaling fields: %w", err)
	}
	approvals, err := json.Marshal(form.Approvals)
	if err != nil {
		return nil, fmt.Errorf("marshaling approvals: %w", err)
	}
	notes, err := json.Marshal(form.AdminNotes)
	if err != nil {
		return nil, fmt.Errorf("marshaling admin notes: %w", err)
	}
	var delivery json.RawMessage
	if form.Delivery != nil {
		delivery, err = json.Marshal(form.Delivery)
		if err != nil {
			return nil, fmt.Errorf("marshaling delivery: %w", err)
		}
	}
	return &formRow{
		ID:             form.ID,
		ServiceType:    string(form.ServiceType),
		SubmittedBy:    form.SubmittedBy,
		Fields:         fields,
		Status:         string(form.Status),
		Approvals:      approvals,
		AdminNotes:     notes,
		Delivery:       delivery,
		Version:        form.Version,
		CreatedAt:      form.CreatedAt,
		UpdatedAt:      form.UpdatedAt,
		LastActivityAt: form.LastActivityAt,
		LastActivityBy: form.LastActivityBy,
	}, nil
}

func fromRow(row *formRow) (*domain.Form, error) {
	form := &domain.Form{
		ID:             row.ID,
		ServiceType:    domain.ServiceType(row.ServiceType),
		SubmittedBy:    row.SubmittedBy,
		Status:         domain.FormStatus(row.Status),
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		LastActivityAt: row.LastActivityAt,
		LastActivityBy: row.LastActivityBy,
		Fields:         map[string]string{},
		Approvals:      map[domain.StageKey]domain.ApprovalRecord{},
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &form.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields: %w", err)
		}
	}
	if len(row.Approvals) > 0 {
		if err := json.Unmarshal(row.Approvals, &form.Approvals); err != nil {
			return nil, fmt.Errorf("unmarshaling approvals: %w", err)
		}
	}
	if len(row.AdminNotes) > 0 {
		if err := json.Unmarshal(row.AdminNotes, &form.AdminNotes); err != nil {
			return nil, fmt.Errorf("unmarshaling admin notes: %w", err)
		}
	}
	if len(row.Delivery) > 0 && string(row.Delivery) != "null" {
		form.Delivery = &domain.Delivery{}
		if err := json.Unmarshal(row.Delivery, form.Delivery); err != nil {
			return nil, fmt.Errorf("unmarshaling delivery: %w", err)
		}
	}
	return form, nil
}

type formRepo struct {
	db *sqlx.DB
}

// NewFormRepo creates a new PostgreSQL-backed FormRepository.
func NewFormRepo(db *sqlx.DB) port.FormRepository {
	return &formRepo{db: db}
}

func (r *formRepo) Create(ctx context.Context, form *domain.Form) error {
	now := time.Now().UTC()
	form.CreatedAt = now
	form.UpdatedAt = now
	form.LastActivityAt = now
	form.Version = 1

	row, err := toRow(form)
	if err != nil {
		return fmt.Errorf("formRepo.Create: %w", err)
	}

	query := `INSERT INTO forms (
		id, service_type, submitted_by, fields, status,
		approvals, admin_notes, delivery, version,
		created_at, updated_at, last_activity_at, last_activity_by
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13
	)`

	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.ServiceType, row.SubmittedBy, row.Fields, row.Status,
		row.Approvals, row.AdminNotes, row.Delivery, row.Version,
		row.CreatedAt, row.UpdatedAt, row.LastActivityAt, row.LastActivityBy)
	if err != nil {
		return fmt.Errorf("formRepo.Create: %w", err)
	}
	return nil
}

func (r *formRepo) GetByID(ctx context.Context, formID uuid.UUID) (*domain.Form, error) {
	var row formRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM forms WHERE id = $1", formID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFormNotFound
		}
		return nil, fmt.Errorf("formRepo.GetByID: %w", err)
	}
	return fromRow(&row)
}

func (r *formRepo) List(ctx context.Context, filter port.FormFilter, offset, limit int) ([]domain.Form, int, error) {
	conds := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ServiceType != nil {
		args = append(args, string(*filter.ServiceType))
		conds = append(conds, fmt.Sprintf("service_type = $%d", len(args)))
	}
	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		conds = append(conds, fmt.Sprintf("submitted_by = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM forms WHERE "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("formRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM forms WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	var rows []formRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("formRepo.List: %w", err)
	}
	return r.collect(rows, total)
}

func (r *formRepo) ListPendingStage(ctx context.Context, stage domain.StageKey, offset, limit int) ([]domain.Form, int, error) {
	idx := domain.StageIndex(stage)
	if idx < 0 {
		return nil, 0, fmt.Errorf("formRepo.ListPendingStage: unknown stage %q", stage)
	}

	conds := []string{
		"status NOT IN ('draft', 'needs_correction', 'rejected', 'completed', 'locked_by_staff5')",
	}
	for _, key := range domain.StageOrder[:idx] {
		conds = append(conds, fmt.Sprintf("COALESCE(approvals->'%s'->>'approved', 'false') = 'true'", key))
	}
	conds = append(conds, fmt.Sprintf("COALESCE(approvals->'%s'->>'approved', 'false') = 'false'", stage))
	where := strings.Join(conds, " AND ")

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM forms WHERE "+where)
	if err != nil {
		return nil, 0, fmt.Errorf("formRepo.ListPendingStage count: %w", err)
	}

	var rows []formRow
	err = r.db.SelectContext(ctx, &rows,
		"SELECT * FROM forms WHERE "+where+" ORDER BY last_activity_at ASC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("formRepo.ListPendingStage: %w", err)
	}
	return r.collect(rows, total)
}

func (r *formRepo) ListEscalationDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Form, error) {
	var rows []formRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM forms
		 WHERE delivery IS NOT NULL
		   AND delivery->>'status' = 'pending_user_selection'
		   AND delivery->>'escalated_at' IS NULL
		   AND (delivery->>'ready_for_delivery_at')::timestamptz <= $1
		 ORDER BY updated_at ASC LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("formRepo.ListEscalationDue: %w", err)
	}
	forms, _, err := r.collect(rows, len(rows))
	return forms, err
}

func (r *formRepo) Update(ctx context.Context, form *domain.Form, expectedVersion int64) error {
	row, err := toRow(form)
	if err != nil {
		return fmt.Errorf("formRepo.Update: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE forms SET
			fields = $1, status = $2, approvals = $3, admin_notes = $4,
			delivery = $5, version = version + 1,
			updated_at = $6, last_activity_at = $7, last_activity_by = $8
		 WHERE id = $9 AND version = $10`,
		row.Fields, row.Status, row.Approvals, row.AdminNotes,
		row.Delivery, row.UpdatedAt, row.LastActivityAt, row.LastActivityBy,
		row.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("formRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrFormConflict
	}
	form.Version = expectedVersion + 1
	return nil
}

func (r *formRepo) collect(rows []formRow, total int) ([]domain.Form, int, error) {
	forms := make([]domain.Form, 0, len(rows))
	for i := range rows {
		form, err := fromRow(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		forms = append(forms, *form)
	}
	return forms, total, nil
}
