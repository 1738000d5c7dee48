package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/keepsakeshop/keepsake-backend/internal/users"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

// OrderItemDTO is one immutable line of a placed order.
type OrderItemDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	PriceCents int       `json:"price_cents"`
	Quantity   int       `json:"quantity"`
}

// OrderDTO is the wire shape of an order. When the owner row was preloaded it
// appears as a public profile; credential fields never cross this boundary.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"user_id"`
	User            *users.UserDTO        `json:"user,omitempty"`
	Items           []OrderItemDTO        `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	TotalPriceCents int                   `json:"total_price_cents"`
	PaymentStatus   string                `json:"payment_status"`
	PaymentDetails  json.RawMessage       `json:"payment_details,omitempty"`
	IsPaid          bool                  `json:"is_paid"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	Status          enums.OrderStatus     `json:"status"`
	IsDelivered     bool                  `json:"is_delivered"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrderListDTO is one page of orders with an optional continuation cursor.
type OrderListDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted order onto its wire shape.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		User:            users.FromModel(o.User),
		Items:           make([]OrderItemDTO, 0, len(o.Items)),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		TotalPriceCents: o.TotalPriceCents,
		PaymentStatus:   o.PaymentStatus,
		PaymentDetails:  o.PaymentDetails,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		Status:          o.Status,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		})
	}
	return dto
}

// ListFromModel maps one repository page onto its wire shape.
func ListFromModel(list *OrderList) *OrderListDTO {
	if list == nil {
		return nil
	}
	dto := &OrderListDTO{
		Orders:     make([]OrderDTO, 0, len(list.Orders)),
		NextCursor: list.NextCursor,
	}
	for i := range list.Orders {
		dto.Orders = append(dto.Orders, *FromModel(&list.Orders[i]))
	}
	return dto
}
