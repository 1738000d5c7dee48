package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keepsakeshop/keepsake-backend/internal/identity"
	"github.com/keepsakeshop/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products productFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// Get returns the cart for the identity, or an empty transient cart when the
// identity has never added anything. Carts are only persisted on first add.
func (s *service) Get(ctx context.Context, id identity.Identity) (*models.Cart, error) {
	cart, err := s.repo.FindByIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart(id), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, id identity.Identity, input AddItemInput) (*models.Cart, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.LockByIdentity(ctx, id)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
			}
			cart, err = repo.Create(ctx, emptyCart(id))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
			}
		}

		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if matched := findLine(cart, input.ProductID, input.Customization); matched != nil {
			matched.Quantity += input.Quantity
			if err := repo.UpdateItemQuantity(ctx, matched.ID, matched.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line quantity")
			}
		} else {
			line := models.CartItem{
				CartID:        cart.ID,
				ProductID:     product.ID,
				Name:          product.Name,
				ImageURL:      product.ImageURL,
				PriceCents:    product.EffectivePriceCents(),
				Quantity:      input.Quantity,
				Customization: input.Customization,
			}
			if err := repo.CreateItem(ctx, &line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create line")
			}
			cart.Items = append(cart.Items, line)
		}

		if err := persistTotal(ctx, repo, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

func (s *service) SetItemQuantity(ctx context.Context, id identity.Identity, input SetQuantityInput) (*models.Cart, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId required")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.LockByIdentity(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}

		matched := findLine(cart, input.ProductID, input.Customization)
		if matched == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		if input.Quantity <= 0 {
			if err := repo.DeleteItem(ctx, matched.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete line")
			}
			dropLine(cart, matched.ID)
		} else {
			matched.Quantity = input.Quantity
			if err := repo.UpdateItemQuantity(ctx, matched.ID, input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line quantity")
			}
		}

		if err := persistTotal(ctx, repo, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

// RemoveItem drops the matching line if present. Removing an absent line is
// not an error here, unlike SetItemQuantity.
func (s *service) RemoveItem(ctx context.Context, id identity.Identity, input RemoveItemInput) (*models.Cart, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId required")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.LockByIdentity(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				out = emptyCart(id)
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}

		for _, line := range cart.Items {
			if !line.Matches(input.ProductID, input.Customization) {
				continue
			}
			if err := repo.DeleteItem(ctx, line.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete line")
			}
			dropLine(cart, line.ID)
		}

		if err := persistTotal(ctx, repo, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

// Merge folds the guest cart into the user's cart at login. When the user has
// no cart yet the guest cart is simply reassigned; otherwise overlapping
// lines sum quantities and the guest cart is deleted.
func (s *service) Merge(ctx context.Context, guestToken string, userID uuid.UUID) (*models.Cart, error) {
	if strings.TrimSpace(guestToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guestId required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		guestCart, err := repo.LockByIdentity(ctx, identity.Guest(guestToken))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Nothing to merge; surface whatever the user already has.
				userCart, findErr := repo.FindByIdentity(ctx, identity.User(userID))
				if findErr != nil {
					if errors.Is(findErr, gorm.ErrRecordNotFound) {
						out = emptyCart(identity.User(userID))
						return nil
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load user cart")
				}
				out = userCart
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock guest cart")
		}

		userCart, err := repo.LockByIdentity(ctx, identity.User(userID))
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock user cart")
			}
			if err := repo.ReassignToUser(ctx, guestCart.ID, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign guest cart")
			}
			guestCart.UserID = &userID
			guestCart.GuestToken = nil
			out = guestCart
			return nil
		}

		for _, line := range guestCart.Items {
			if matched := findLine(userCart, line.ProductID, line.Customization); matched != nil {
				matched.Quantity += line.Quantity
				if err := repo.UpdateItemQuantity(ctx, matched.ID, matched.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge line quantity")
				}
				continue
			}
			copied := models.CartItem{
				CartID:        userCart.ID,
				ProductID:     line.ProductID,
				Name:          line.Name,
				ImageURL:      line.ImageURL,
				PriceCents:    line.PriceCents,
				Quantity:      line.Quantity,
				Customization: line.Customization,
			}
			if err := repo.CreateItem(ctx, &copied); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "copy guest line")
			}
			userCart.Items = append(userCart.Items, copied)
		}

		if err := repo.Delete(ctx, guestCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete guest cart")
		}

		if err := persistTotal(ctx, repo, userCart); err != nil {
			return err
		}
		out = userCart
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return out, nil
}

func emptyCart(id identity.Identity) *models.Cart {
	cart := &models.Cart{Items: []models.CartItem{}}
	if userID, ok := id.UserID(); ok {
		cart.UserID = &userID
	} else if token, ok := id.GuestToken(); ok {
		cart.GuestToken = &token
	}
	return cart
}

func findLine(cart *models.Cart, productID uuid.UUID, customization types.Customization) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].Matches(productID, customization) {
			return &cart.Items[i]
		}
	}
	return nil
}

func persistTotal(ctx context.Context, repo Repository, cart *models.Cart) error {
	cart.RecomputeTotal()
	if cart.ID == uuid.Nil {
		return nil
	}
	if err := repo.UpdateTotal(ctx, cart.ID, cart.TotalPriceCents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart total")
	}
	return nil
}

func dropLine(cart *models.Cart, itemID uuid.UUID) {
	kept := cart.Items[:0]
	for _, line := range cart.Items {
		if line.ID != itemID {
			kept = append(kept, line)
		}
	}
	cart.Items = kept
}

func asAppError(err error) error {
	var appErr *pkgerrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart operation")
}
