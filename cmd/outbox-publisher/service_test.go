package main

import (
	"context"
	"errors"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/config"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	events := f.events
	f.events = nil
	return events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "msg-id", f.err
}

type fakePublisher struct {
	results    []publishResult
	index      int
	aggregates []enums.OutboxAggregateType
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if f.index >= len(f.results) {
		return fakePublishResult{}
	}
	result := f.results[f.index]
	f.index++
	return result
}

type fakePinger struct{}

func (fakePinger) Ping(context.Context) error { return nil }

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error                   { return nil }
func (fakePubSub) NotificationPublisher() *gcppubsub.Publisher  { return nil }
func (fakePubSub) OrdersPublisher() *gcppubsub.Publisher        { return nil }

func newTestService(t *testing.T, repo outboxRepository, pub *fakePublisher) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "outbox-test"}),
		DB:         fakePinger{},
		PubSub:     fakePubSub{},
		Repository: repo,
		PublisherFactory: func(aggregate enums.OutboxAggregateType) publisher {
			pub.aggregates = append(pub.aggregates, aggregate)
			return pub
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{"version":1}`),
			},
			{
				ID:            uuid.New(),
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{"version":1}`),
			},
		},
	}
	firstID := repo.events[0].ID
	secondID := repo.events[1].ID
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != firstID {
		t.Fatalf("unexpected failed rows: %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != secondID {
		t.Fatalf("unexpected published rows: %v", repo.published)
	}
}

func TestServiceProcessBatchEmptyReportsIdle(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatal("expected empty batch to report idle")
	}
}

func TestServiceRoutesByAggregateType(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{ID: uuid.New(), EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: []byte(`{}`)},
			{ID: uuid.New(), EventType: enums.EventReminderDue, AggregateType: enums.AggregateReminder, AggregateID: uuid.New(), Payload: []byte(`{}`)},
		},
	}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}, fakePublishResult{}}}
	service := newTestService(t, repo, pub)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(pub.aggregates) != 2 || pub.aggregates[0] != enums.AggregateOrder || pub.aggregates[1] != enums.AggregateReminder {
		t.Fatalf("unexpected aggregate routing: %v", pub.aggregates)
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	base := defaultPublishTimeout / 30
	backoff := nextBackoff(base, base, maxBackoff)
	if backoff != base*2 {
		t.Fatalf("expected backoff to double, got %s", backoff)
	}
	if got := nextBackoff(maxBackoff, base, maxBackoff); got != maxBackoff {
		t.Fatalf("expected backoff capped at %s, got %s", maxBackoff, got)
	}
}
