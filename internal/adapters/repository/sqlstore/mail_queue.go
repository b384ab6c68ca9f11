package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type mailQueue struct {
	db *sql.DB
}

// NewMailQueue writes into the host platform's outbox. Delivery and retries
// belong to the host's mail worker.
func NewMailQueue(db *sql.DB) ports.MailQueue {
	return &mailQueue{
		db: db,
	}
}

func (q *mailQueue) Enqueue(ctx context.Context, mail *domain.Mail) error {
	query := `
		INSERT INTO queued_mails (id, event_id, recipient, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.db.ExecContext(ctx, query, mail.ID, mail.EventID, mail.To, mail.Subject, mail.Body, mail.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to queue mail: %w", err)
	}
	return nil
}
