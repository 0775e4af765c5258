package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrero/stockpilot-backend/pkg/config"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
)

type fakeRepo struct {
	pending   []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(ctx context.Context) (string, error) {
	return "msg-1", f.err
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	failFor  map[string]error
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if err, ok := f.failFor[msg.Attributes["aggregate_id"]]; ok {
		return fakeResult{err: err}
	}
	return fakeResult{}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func pendingEvent(aggregateID uuid.UUID) models.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{"quantity": 3})
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventStockSold,
		AggregateType: enums.AggregateProduct,
		AggregateID:   aggregateID,
		Payload:       payload,
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	eventA := pendingEvent(uuid.New())
	eventB := pendingEvent(uuid.New())
	repo := &fakeRepo{pending: []models.OutboxEvent{eventA, eventB}}
	pub := &fakePublisher{}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, []uuid.UUID{eventA.ID, eventB.ID}, repo.published)
	assert.Empty(t, repo.failed)
	require.Len(t, pub.messages, 2)
	assert.Equal(t, string(enums.EventStockSold), pub.messages[0].Attributes["event_type"])
	assert.JSONEq(t, `{"quantity":3}`, string(pub.messages[0].Data))
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	badAggregate := uuid.New()
	eventA := pendingEvent(badAggregate)
	eventB := pendingEvent(uuid.New())
	repo := &fakeRepo{pending: []models.OutboxEvent{eventA, eventB}}
	pub := &fakePublisher{failFor: map[string]error{badAggregate.String(): errors.New("broker down")}}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, []uuid.UUID{eventA.ID}, repo.failed)
	assert.Equal(t, []uuid.UUID{eventB.ID}, repo.published)
}

func TestProcessBatchIdleWhenNothingPending(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
	assert.Empty(t, pub.messages)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, &fakePublisher{})
	assert.Equal(t, defaultBatchSize, svc.batchSize)
	assert.Equal(t, defaultMaxAttempts, svc.maxAttempts)
	assert.Equal(t, defaultPollMs, int(svc.pollInterval.Milliseconds()))
}
