// Package csvexport renders collected votes as CSV.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
)

var (
	baseHeader     = []string{"code", "voter", "timestamp", "score"}
	extendedHeader = []string{"type", "track", "title"}
)

// Filename returns the download name for an event's export.
func Filename(eventSlug string) string {
	return eventSlug + "-public-votes.csv"
}

// Write emits a header followed by one line per row. Extended mode appends
// the submission type, track and title.
func Write(w io.Writer, rows []domain.ExportRow, extended bool) error {
	cw := csv.NewWriter(w)

	header := baseHeader
	if extended {
		header = append(append([]string{}, baseHeader...), extendedHeader...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Code,
			row.VoterIdentity,
			row.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(row.Score),
		}
		if extended {
			record = append(record, row.Type, row.Track, row.Title)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
