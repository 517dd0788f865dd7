package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"maitred/internal/database"
	"maitred/internal/models"
)

// AuditRepository appends to the immutable audit ledger. There is no update
// and no delete; every status transition and assignment move leaves a row.
type AuditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertTx appends one entry inside the same transaction as the mutation it
// records, so either both land or neither does.
func (r *AuditRepository) InsertTx(ctx context.Context, tx *sql.Tx, entry *models.AuditLogEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = uuid.New().String()
	}
	if entry.Changes == nil {
		entry.Changes = json.RawMessage(`{}`)
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_log (entry_id, subject_type, subject_id, actor_id, action, changes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return tx.QueryRowContext(ctx, query,
		entry.EntryID,
		entry.SubjectType,
		entry.SubjectID,
		entry.ActorID,
		entry.Action,
		[]byte(entry.Changes),
		metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListBySubject returns the ledger of one subject, oldest first.
func (r *AuditRepository) ListBySubject(ctx context.Context, subjectType string, subjectID int64) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, entry_id, subject_type, subject_id, actor_id, action, changes, metadata, created_at
		FROM audit_log
		WHERE subject_type = $1 AND subject_id = $2
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var changes, metadata []byte
		err := rows.Scan(&entry.ID, &entry.EntryID, &entry.SubjectType, &entry.SubjectID,
			&entry.ActorID, &entry.Action, &changes, &metadata, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		entry.Changes = json.RawMessage(changes)
		if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
