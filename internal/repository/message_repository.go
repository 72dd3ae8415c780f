package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

// MessageRepository stores one row per send attempt made by a job.
type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.DispatchMessage) error {
	query := `
		INSERT INTO dispatch_messages
			(job_id, rule_index, row_index, contact_name, phone_number, content, status, message_id, error, attempted_at)
		VALUES
			(:job_id, :rule_index, :row_index, :contact_name, :phone_number, :content, :status, :message_id, :error, :attempted_at)
	`

	result, err := r.db.NamedExecContext(ctx, query, msg)
	if err != nil {
		return fmt.Errorf("failed to create dispatch message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

func (r *MessageRepository) GetByJob(
	ctx context.Context,
	jobID string,
	page, pageSize int,
) ([]domain.DispatchMessage, int64, error) {
	offset := (page - 1) * pageSize

	var totalCount int64
	countQuery := "SELECT COUNT(*) FROM dispatch_messages WHERE job_id = ?"
	if err := r.db.GetContext(ctx, &totalCount, countQuery, jobID); err != nil {
		return nil, 0, fmt.Errorf("failed to count dispatch messages: %w", err)
	}

	query := `
		SELECT id, job_id, rule_index, row_index, contact_name, phone_number, content, status, message_id, error, attempted_at
		FROM dispatch_messages
		WHERE job_id = ?
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`

	messages := []domain.DispatchMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, jobID, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to get dispatch messages: %w", err)
	}

	return messages, totalCount, nil
}

// GetStats returns how many send attempts succeeded and failed across all jobs.
func (r *MessageRepository) GetStats(ctx context.Context) (sent, failed int64, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0)   AS sent,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed
		FROM dispatch_messages
	`

	var stats struct {
		Sent   int64 `db:"sent"`
		Failed int64 `db:"failed"`
	}

	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return 0, 0, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats.Sent, stats.Failed, nil
}
