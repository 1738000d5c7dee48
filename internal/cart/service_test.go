package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/internal/identity"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCartRepo struct {
	carts map[uuid.UUID]*models.Cart
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: map[uuid.UUID]*models.Cart{}}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) find(id identity.Identity) *models.Cart {
	for _, cart := range s.carts {
		if userID, ok := id.UserID(); ok {
			if cart.UserID != nil && *cart.UserID == userID {
				return cart
			}
			continue
		}
		token, _ := id.GuestToken()
		if cart.GuestToken != nil && *cart.GuestToken == token {
			return cart
		}
	}
	return nil
}

func (s *stubCartRepo) FindByIdentity(ctx context.Context, id identity.Identity) (*models.Cart, error) {
	if cart := s.find(id); cart != nil {
		copied := *cart
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) LockByIdentity(ctx context.Context, id identity.Identity) (*models.Cart, error) {
	return s.FindByIdentity(ctx, id)
}

func (s *stubCartRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.ID = uuid.New()
	stored := *cart
	s.carts[cart.ID] = &stored
	return cart, nil
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	cart, ok := s.carts[item.CartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.Items = append(cart.Items, *item)
	return nil
}

func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	for _, cart := range s.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	for _, cart := range s.carts {
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
	}
	return nil
}

func (s *stubCartRepo) UpdateTotal(ctx context.Context, cartID uuid.UUID, totalCents int) error {
	cart, ok := s.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cart.TotalPriceCents = totalCents
	return nil
}

func (s *stubCartRepo) ReassignToUser(ctx context.Context, cartID, userID uuid.UUID) error {
	cart, ok := s.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	owner := userID
	cart.UserID = &owner
	cart.GuestToken = nil
	return nil
}

func (s *stubCartRepo) Delete(ctx context.Context, cartID uuid.UUID) error {
	delete(s.carts, cartID)
	return nil
}

func (s *stubCartRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	for id, cart := range s.carts {
		if cart.UserID != nil && *cart.UserID == userID {
			delete(s.carts, id)
		}
	}
	return nil
}

func newTestService(t *testing.T, repo *stubCartRepo, products map[uuid.UUID]*models.Product) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, &stubProducts{products: products})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testProduct(priceCents int) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		Name:       "Engraved Locket",
		ImageURL:   "https://img.example/locket.jpg",
		PriceCents: priceCents,
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestAddItemCreatesCartLazily(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(1500)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	id := identity.Guest("guest_100")

	cart, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected captured one line, got %d", len(cart.Items))
	}
	if cart.Items[0].PriceCents != 1500 || cart.Items[0].Name != product.Name {
		t.Fatalf("expected snapshotted product fields, got %+v", cart.Items[0])
	}
	if cart.TotalPriceCents != 3000 {
		t.Fatalf("expected total 3000, got %d", cart.TotalPriceCents)
	}
	if len(repo.carts) != 1 {
		t.Fatalf("expected one persisted cart, got %d", len(repo.carts))
	}
}

func TestAddItemSameLineIncrementsQuantity(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(1000)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	id := identity.Guest("guest_101")
	custom := types.TextCustomization("For Mum")

	if _, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 1, Customization: custom}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 2, Customization: custom})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalPriceCents != 3000 {
		t.Fatalf("expected total 3000, got %d", cart.TotalPriceCents)
	}
}

func TestAddItemDifferentCustomizationCreatesDistinctLine(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(500)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	id := identity.Guest("guest_102")

	if _, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 1, Customization: types.TextCustomization("A")}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 1, Customization: types.TextCustomization("B")})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(cart.Items))
	}
	if cart.TotalPriceCents != 1000 {
		t.Fatalf("expected total 1000, got %d", cart.TotalPriceCents)
	}
}

func TestAddItemUnknownProductFailsNotFound(t *testing.T) {
	svc := newTestService(t, newStubCartRepo(), map[uuid.UUID]*models.Product{})

	_, err := svc.AddItem(context.Background(), identity.Guest("guest_103"), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	svc := newTestService(t, newStubCartRepo(), map[uuid.UUID]*models.Product{})

	_, err := svc.AddItem(context.Background(), identity.Guest("guest_104"), AddItemInput{ProductID: uuid.New(), Quantity: 0})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestSetItemQuantityZeroRemovesLine(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(700)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	id := identity.Guest("guest_105")

	if _, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.SetItemQuantity(context.Background(), id, SetQuantityInput{ProductID: product.ID, Quantity: 0})
	if err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
	if cart.TotalPriceCents != 0 {
		t.Fatalf("expected zero total, got %d", cart.TotalPriceCents)
	}
}

func TestSetItemQuantityMissingLineFailsNotFound(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(700)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	id := identity.Guest("guest_106")

	if _, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.SetItemQuantity(context.Background(), id, SetQuantityInput{ProductID: uuid.New(), Quantity: 2})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestRemoveItemMissingLineIsNoop(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(700)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	id := identity.Guest("guest_107")

	if _, err := svc.AddItem(context.Background(), id, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.RemoveItem(context.Background(), id, RemoveItemInput{ProductID: uuid.New()})
	if err != nil {
		t.Fatalf("RemoveItem should not fail on absent line: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected surviving line, got %d", len(cart.Items))
	}
}

func TestTotalIsConsistentAfterMutationSequence(t *testing.T) {
	repo := newStubCartRepo()
	p1 := testProduct(1000)
	p2 := testProduct(250)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{p1.ID: p1, p2.ID: p2})
	id := identity.Guest("guest_108")
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, id, AddItemInput{ProductID: p1.ID, Quantity: 2}); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := svc.AddItem(ctx, id, AddItemInput{ProductID: p2.ID, Quantity: 4}); err != nil {
		t.Fatalf("add p2: %v", err)
	}
	if _, err := svc.SetItemQuantity(ctx, id, SetQuantityInput{ProductID: p1.ID, Quantity: 1}); err != nil {
		t.Fatalf("set p1: %v", err)
	}
	cart, err := svc.RemoveItem(ctx, id, RemoveItemInput{ProductID: p2.ID})
	if err != nil {
		t.Fatalf("remove p2: %v", err)
	}

	want := 0
	for _, line := range cart.Items {
		want += line.PriceCents * line.Quantity
	}
	if cart.TotalPriceCents != want || cart.TotalPriceCents != 1000 {
		t.Fatalf("expected total %d (=1000), got %d", want, cart.TotalPriceCents)
	}
}

func TestMergeReassignsGuestCartWhenUserHasNone(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(900)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	guestID := identity.Guest("guest_109")
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), guestID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.Merge(context.Background(), "guest_109", userID)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if cart.UserID == nil || *cart.UserID != userID {
		t.Fatalf("expected cart reassigned to user, got %+v", cart)
	}
	if cart.GuestToken != nil {
		t.Fatal("expected guest token cleared")
	}
	if len(repo.carts) != 1 {
		t.Fatalf("expected exactly one cart after merge, got %d", len(repo.carts))
	}
}

func TestMergeSumsOverlappingLinesAndDeletesGuestCart(t *testing.T) {
	repo := newStubCartRepo()
	shared := testProduct(1000)
	extra := testProduct(400)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{shared.ID: shared, extra.ID: extra})
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, identity.User(userID), AddItemInput{ProductID: shared.ID, Quantity: 1}); err != nil {
		t.Fatalf("seed user cart: %v", err)
	}
	if _, err := svc.AddItem(ctx, identity.Guest("guest_110"), AddItemInput{ProductID: shared.ID, Quantity: 2}); err != nil {
		t.Fatalf("seed guest overlap: %v", err)
	}
	if _, err := svc.AddItem(ctx, identity.Guest("guest_110"), AddItemInput{ProductID: extra.ID, Quantity: 1}); err != nil {
		t.Fatalf("seed guest extra: %v", err)
	}

	cart, err := svc.Merge(ctx, "guest_110", userID)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected two lines after merge, got %d", len(cart.Items))
	}
	for _, line := range cart.Items {
		if line.ProductID == shared.ID && line.Quantity != 3 {
			t.Fatalf("expected overlapping line quantity 3, got %d", line.Quantity)
		}
	}
	if cart.TotalPriceCents != 3400 {
		t.Fatalf("expected total 3400, got %d", cart.TotalPriceCents)
	}
	if len(repo.carts) != 1 {
		t.Fatalf("expected guest cart deleted, have %d carts", len(repo.carts))
	}
}

func TestMergeWithoutGuestCartReturnsUserCart(t *testing.T) {
	repo := newStubCartRepo()
	product := testProduct(100)
	svc := newTestService(t, repo, map[uuid.UUID]*models.Product{product.ID: product})
	userID := uuid.New()

	if _, err := svc.AddItem(context.Background(), identity.User(userID), AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("seed user cart: %v", err)
	}
	cart, err := svc.Merge(context.Background(), "guest_absent", userID)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected user cart unchanged, got %d lines", len(cart.Items))
	}
}

func TestGetReturnsTransientEmptyCart(t *testing.T) {
	svc := newTestService(t, newStubCartRepo(), map[uuid.UUID]*models.Product{})

	cart, err := svc.Get(context.Background(), identity.Guest("guest_111"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cart.ID != uuid.Nil || len(cart.Items) != 0 || cart.TotalPriceCents != 0 {
		t.Fatalf("expected transient empty cart, got %+v", cart)
	}
}
