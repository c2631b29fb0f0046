package worker

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/pkg/logger"
)

type recordingOutboxRepo struct {
	cutoff  time.Time
	deleted int64
}

func (r *recordingOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error { return nil }

func (r *recordingOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *recordingOutboxRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error {
	return nil
}

func (r *recordingOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.cutoff = before
	return r.deleted, nil
}

func TestCleanupUsesRetentionCutoff(t *testing.T) {
	repo := &recordingOutboxRepo{deleted: 4}
	w := NewOutboxCleanupWorker(repo, 7*24*time.Hour, time.Hour, logger.NewLogger(nil))

	before := time.Now().Add(-7 * 24 * time.Hour)
	require.NoError(t, w.cleanup(context.Background()))
	after := time.Now().Add(-7 * 24 * time.Hour)

	assert.False(t, repo.cutoff.Before(before))
	assert.False(t, repo.cutoff.After(after))
}
