package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/pkg/errors"
)

func (r *storeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	query := `
		SELECT id, name, timezone, weekly_hours, created_at, updated_at
		FROM stores
		WHERE id = $1
	`
	var store model.Store
	if err := r.db.GetContext(ctx, &store, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound("store", err)
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &store, nil
}
