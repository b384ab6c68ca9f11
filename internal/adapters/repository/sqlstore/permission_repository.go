package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type permissionRepository struct {
	db *sql.DB
}

func NewPermissionRepository(db *sql.DB) ports.PermissionRepository {
	return &permissionRepository{
		db: db,
	}
}

func (r *permissionRepository) CanChangeSettings(ctx context.Context, userID uuid.UUID, eventID int64) (bool, error) {
	query := `SELECT can_change_settings FROM event_permissions WHERE event_id = $1 AND user_id = $2`

	var allowed bool
	err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&allowed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return allowed, nil
}
