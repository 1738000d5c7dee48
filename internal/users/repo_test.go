package users

import (
	"context"
	"errors"
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
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, db.Exec(users).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, createdAt time.Time) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Name:         "Shopper",
		Email:        email,
		PasswordHash: "x",
		Role:         enums.UserRoleCustomer,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		seedUser(t, db, uuid.NewString()+"@example.com", base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.List(ctx, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Users, 3)
	require.NotEmpty(t, first.NextCursor)
	assert.True(t, first.Users[0].CreatedAt.After(first.Users[2].CreatedAt), "newest first")

	second, err := repo.List(ctx, pagination.Params{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Users, 2)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, u := range append(first.Users, second.Users...) {
		assert.False(t, seen[u.ID], "no user may appear on two pages")
		seen[u.ID] = true
	}
}

func TestRepositoryUpdate(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "maya@example.com", time.Now().UTC())

	err := repo.Update(ctx, user.ID, map[string]any{
		"name": "Maya R.",
		"role": enums.UserRoleAdmin,
	})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maya R.", reloaded.Name)
	assert.Equal(t, enums.UserRoleAdmin, reloaded.Role)

	err = repo.Update(ctx, uuid.New(), map[string]any{"name": "ghost"})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryDelete(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "maya@example.com", time.Now().UTC())

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.FindByID(ctx, user.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.Delete(ctx, user.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
