package ports

import (
	"context"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

type ExportService interface {
	Export(ctx context.Context, eventSlug string) ([]domain.ExportRow, error)
}
