package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/pkg/logger"
	"github.com/jwalitptl/petcare-api/pkg/metrics"
)

type fakeOutboxRepo struct {
	pending  []*model.OutboxEvent
	statuses map[uuid.UUID]string
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{pending: events, statuses: make(map[uuid.UUID]string)}
}

func (r *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error { return nil }

func (r *fakeOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return r.pending, nil
}

func (r *fakeOutboxRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error {
	r.statuses[id] = status
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeBroker struct {
	published map[string]int
	failFor   map[string]bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string]int), failFor: make(map[string]bool)}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if b.failFor[channel] {
		return stderrors.New("broker unavailable")
	}
	b.published[channel]++
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func pendingEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   json.RawMessage(`{"id":"x"}`),
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
	}
}

// Metrics register against the default prometheus registry, so the suite
// shares one instance.
var testMetrics = metrics.NewMetrics("petcare_test", "outbox")

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func TestProcessEvents(t *testing.T) {
	ctx := context.Background()
	l := logger.NewLogger(nil)

	t.Run("publishes each event on its type channel and marks processed", func(t *testing.T) {
		booked := pendingEvent("appointment.booked")
		rescheduled := pendingEvent("appointment.rescheduled")
		repo := newFakeOutboxRepo(booked, rescheduled)
		broker := newFakeBroker()

		p := NewOutboxProcessor(repo, broker, testConfig(), l, testMetrics)
		require.NoError(t, p.processEvents(ctx))

		assert.Equal(t, 1, broker.published["appointment.booked"])
		assert.Equal(t, 1, broker.published["appointment.rescheduled"])
		assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[booked.ID])
		assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[rescheduled.ID])
	})

	t.Run("broker failure marks the event failed and keeps going", func(t *testing.T) {
		bad := pendingEvent("appointment.booked")
		good := pendingEvent("appointment.rescheduled")
		repo := newFakeOutboxRepo(bad, good)
		broker := newFakeBroker()
		broker.failFor["appointment.booked"] = true

		p := NewOutboxProcessor(repo, broker, testConfig(), l, testMetrics)
		require.NoError(t, p.processEvents(ctx))

		assert.Equal(t, string(model.OutboxStatusFailed), repo.statuses[bad.ID])
		assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[good.ID])
	})
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	repo := newFakeOutboxRepo()
	broker := newFakeBroker()
	l := logger.NewLogger(nil)

	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, OutboxProcessorConfig{}, l, testMetrics)
	})

	cfg := testConfig()
	cfg.PollInterval = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, cfg, l, testMetrics)
	})
}
