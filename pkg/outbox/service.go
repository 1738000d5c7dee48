package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
)

// Service appends domain events to the outbox table inside the caller's
// transaction so event emission commits or rolls back with the state change.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("outbox repository is required")
	}
	return &Service{repo: repo}, nil
}

// Emit wraps data in a versioned envelope and records it as an unpublished
// outbox event on the given aggregate.
func (s *Service) Emit(
	tx *gorm.DB,
	aggregate enums.OutboxAggregateType,
	aggregateID uuid.UUID,
	eventType enums.OutboxEventType,
	actor *ActorRef,
	data any,
) error {
	if !aggregate.IsValid() {
		return fmt.Errorf("invalid aggregate type %q", aggregate)
	}
	if !eventType.IsValid() {
		return fmt.Errorf("invalid event type %q", eventType)
	}
	if aggregateID == uuid.Nil {
		return errors.New("aggregate id is required")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	envelope := PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		Data:       raw,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return s.repo.Insert(tx, models.OutboxEvent{
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		Payload:       payload,
	})
}
