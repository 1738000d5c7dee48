package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

func TestFromModelOmitsOwnerCredentials(t *testing.T) {
	now := time.Now().UTC()
	order := &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		User: &models.User{
			ID:           uuid.New(),
			Name:         "Maya",
			Email:        "maya@example.com",
			PasswordHash: "argon2id$secret-hash",
			Role:         enums.UserRoleCustomer,
		},
		Items: []models.OrderItem{{
			ID:         uuid.New(),
			ProductID:  uuid.New(),
			Name:       "Engraved locket",
			ImageURL:   "https://cdn.example.com/locket.jpg",
			PriceCents: 4500,
			Quantity:   1,
		}},
		ShippingAddress: types.ShippingAddress{Address: "1 Main St", City: "Lisbon", PostalCode: "1000-001", Country: "PT"},
		PaymentMethod:   "card",
		TotalPriceCents: 4500,
		PaymentStatus:   "succeeded",
		IsPaid:          true,
		PaidAt:          &now,
		Status:          enums.OrderStatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	payload, err := json.Marshal(FromModel(order))
	require.NoError(t, err)

	body := string(payload)
	assert.NotContains(t, body, "argon2id$secret-hash")
	assert.NotContains(t, body, "PasswordHash")
	assert.NotContains(t, body, "password_hash")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Contains(t, decoded, "total_price_cents")
	assert.Contains(t, decoded, "shipping_address")

	owner, ok := decoded["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "maya@example.com", owner["email"])
	assert.Len(t, owner, 6)
}

func TestFromModelWithoutPreloadedOwner(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: uuid.New()}

	payload, err := json.Marshal(FromModel(order))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.NotContains(t, decoded, "user")
	assert.Contains(t, decoded, "user_id")
}

func TestListFromModelCarriesCursor(t *testing.T) {
	list := &OrderList{
		Orders:     []models.Order{{ID: uuid.New()}, {ID: uuid.New()}},
		NextCursor: "opaque-cursor",
	}

	dto := ListFromModel(list)
	require.NotNil(t, dto)
	assert.Len(t, dto.Orders, 2)
	assert.Equal(t, "opaque-cursor", dto.NextCursor)

	payload, err := json.Marshal(&OrderListDTO{Orders: []OrderDTO{}})
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "next_cursor")
}
