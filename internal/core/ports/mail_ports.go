package ports

import (
	"context"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

// MailQueue hands messages to the host platform, which owns delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, mail *domain.Mail) error
}
