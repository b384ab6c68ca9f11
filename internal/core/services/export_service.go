package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type exportService struct {
	events ports.EventRepository
	votes  ports.VoteRepository
}

func NewExportService(events ports.EventRepository, votes ports.VoteRepository) ports.ExportService {
	return &exportService{events: events, votes: votes}
}

// Export returns every vote cast for the event, ordered by submission code and
// then timestamp. It does not look at the voting window: organizers may export
// while voting runs and after it closed.
func (s *exportService) Export(ctx context.Context, eventSlug string) ([]domain.ExportRow, error) {
	event, err := s.events.GetBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}

	rows, err := s.votes.ListForEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return rows, nil
}
