package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	"github.com/keepsakeshop/keepsake-backend/pkg/enums"
	"github.com/keepsakeshop/keepsake-backend/pkg/pagination"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  total_price_cents INTEGER NOT NULL,
  payment_status TEXT NOT NULL,
  payment_details TEXT,
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  status TEXT NOT NULL DEFAULT 'Processing',
  is_delivered INTEGER NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image_url TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func newUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         enums.UserRoleCustomer,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestOrder(t *testing.T, db *gorm.DB, user *models.User, totalCents int, created time.Time, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:     uuid.New(),
		UserID: user.ID,
		ShippingAddress: types.ShippingAddress{
			FirstName:  "Ann",
			LastName:   "Archer",
			Address:    "12 Elm St",
			City:       "Portland",
			PostalCode: "97201",
			Country:    "US",
			Phone:      "555-0100",
		},
		PaymentMethod:   "card",
		TotalPriceCents: totalCents,
		PaymentStatus:   "pending",
		Status:          status,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, db.Create(order).Error)

	item := models.OrderItem{
		ID:         uuid.New(),
		OrderID:    order.ID,
		ProductID:  uuid.New(),
		Name:       "Engraved Locket",
		ImageURL:   "https://cdn.example.com/locket.jpg",
		PriceCents: totalCents,
		Quantity:   1,
		CreatedAt:  created,
	}
	require.NoError(t, db.Create(&item).Error)
	return order
}

func TestRepositoryListByUser_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	user := newUser(t, db, "Ann Archer", "ann@example.com")
	other := newUser(t, db, "Ben Brook", "ben@example.com")

	now := time.Now().UTC()
	older := createTestOrder(t, db, user, 1500, now.Add(-time.Hour), enums.OrderStatusDelivered)
	newer := createTestOrder(t, db, user, 2500, now, enums.OrderStatusProcessing)
	createTestOrder(t, db, other, 9900, now, enums.OrderStatusProcessing)

	list, err := repo.ListByUser(context.Background(), user.ID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, newer.ID, list.Orders[0].ID)
	assert.Len(t, list.Orders[0].Items, 1)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListByUser(context.Background(), user.ID, pagination.Params{Limit: 1, Cursor: list.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, older.ID, second.Orders[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListAll_preloadsUser(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ann := newUser(t, db, "Ann Archer", "ann@example.com")
	ben := newUser(t, db, "Ben Brook", "ben@example.com")

	now := time.Now().UTC()
	createTestOrder(t, db, ann, 1500, now.Add(-time.Hour), enums.OrderStatusShipped)
	createTestOrder(t, db, ben, 2500, now, enums.OrderStatusProcessing)

	list, err := repo.ListAll(context.Background(), pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Orders, 2)
	assert.Empty(t, list.NextCursor)

	require.NotNil(t, list.Orders[0].User)
	assert.Equal(t, "Ben Brook", list.Orders[0].User.Name)
	require.NotNil(t, list.Orders[1].User)
	assert.Equal(t, "Ann Archer", list.Orders[1].User.Name)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	user := newUser(t, db, "Ann Archer", "ann@example.com")
	order := createTestOrder(t, db, user, 1500, time.Now().UTC(), enums.OrderStatusProcessing)

	deliveredAt := time.Now().UTC()
	err := repo.UpdateStatus(context.Background(), order.ID, map[string]any{
		"status":       enums.OrderStatusDelivered,
		"is_delivered": true,
		"delivered_at": deliveredAt,
	})
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, got.Status)
	assert.True(t, got.IsDelivered)
	require.NotNil(t, got.DeliveredAt)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	user := newUser(t, db, "Ann Archer", "ann@example.com")
	order := createTestOrder(t, db, user, 1500, time.Now().UTC(), enums.OrderStatusProcessing)

	require.NoError(t, repo.Delete(context.Background(), order.ID))

	_, err := repo.FindByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
