package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/publicvoting/internal/core/domain"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

func TestExportService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.configure(t, nil)
	f.submission(t, "BBB", nil)
	f.submission(t, "AAA", nil)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := f.voting.SubmitScores(ctx, ports.SubmitInput{
			EventSlug: testSlug,
			Token:     f.token(t, email),
			Fields:    map[string]string{"AAA-score": "1", "BBB-score": "3"},
		})
		require.NoError(t, err)
	}

	svc := NewExportService(f.events, f.votes)
	rows, err := svc.Export(ctx, testSlug)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "AAA", rows[0].Code)
	assert.Equal(t, "AAA", rows[1].Code)
	assert.Equal(t, "BBB", rows[2].Code)
	assert.Equal(t, 3, rows[3].Score)

	_, err = svc.Export(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
