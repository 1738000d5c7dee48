package newsletter

import (
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
)

// SubscriberDTO is the wire shape of a newsletter signup.
type SubscriberDTO struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// FromModel maps a subscriber row onto its wire shape.
func FromModel(s *models.Subscriber) *SubscriberDTO {
	if s == nil {
		return nil
	}
	return &SubscriberDTO{
		ID:           s.ID,
		Email:        s.Email,
		SubscribedAt: s.SubscribedAt,
	}
}
