// Package storefront applies cart operations to the cart of a session and
// runs checkout against the order store.
package storefront

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"parfumerie/internal/cart"
	"parfumerie/internal/cartstore"
	"parfumerie/internal/checkout"
	"parfumerie/internal/domain"
)

// ErrSubmissionInProgress rejects cart changes and repeated submissions
// while an order for the same session is being stored.
var ErrSubmissionInProgress = errors.New("order submission already in progress")

const (
	maxGiftMessage = 200
	qrSize         = 256
)

type catalogue interface {
	Get(ctx context.Context, id string) (*domain.Perfume, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Perfume, error)
}

type orderStore interface {
	checkout.OrderStore
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
}

type Service struct {
	carts         cartstore.Store
	catalogue     catalogue
	orders        orderStore
	checkout      *checkout.Checkout
	logger        *zap.Logger
	submitTimeout time.Duration
}

type Option func(*Service)

// WithSubmitTimeout bounds how long Checkout may spend storing an order.
// Set it to the cart store's busy flag TTL so the flag cannot lapse while
// a submission is still writing.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.submitTimeout = d
	}
}

func New(carts cartstore.Store, cat catalogue, orders orderStore, co *checkout.Checkout, logger *zap.Logger, opts ...Option) *Service {
	if co == nil {
		co = checkout.New(checkout.WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{carts: carts, catalogue: cat, orders: orders, checkout: co, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Cart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, storeError("load cart", err)
	}
	return c, nil
}

func (s *Service) AddPerfume(ctx context.Context, sessionID, perfumeID string, quantity int) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, &domain.ValidationError{Field: "quantity", Message: "La quantité doit être positive"}
	}
	p, err := s.catalogue.Get(ctx, perfumeID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		c.AddSingleItem(*p, quantity)
		return nil
	})
}

// AddBouquet adds quantity bouquets of the listed perfumes. A perfume id
// listed twice counts twice in every bouquet.
func (s *Service) AddBouquet(ctx context.Context, sessionID string, perfumeIDs []string, giftMessage string, quantity int, isGift bool) (*cart.Cart, error) {
	if len(perfumeIDs) == 0 {
		return nil, &domain.ValidationError{Field: "perfumeIds", Message: "Choisissez au moins un parfum"}
	}
	if quantity < 1 {
		return nil, &domain.ValidationError{Field: "quantity", Message: "La quantité doit être positive"}
	}
	if isGift && utf8.RuneCountInString(strings.TrimSpace(giftMessage)) > maxGiftMessage {
		return nil, &domain.ValidationError{Field: "giftMessage", Message: "Message limité à 200 caractères"}
	}
	perfumes, err := s.catalogue.GetMany(ctx, perfumeIDs)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		c.AddBouquet(perfumes, giftMessage, quantity, isGift)
		return nil
	})
}

// UpdateQuantity sets a line quantity; zero or less removes the line and,
// like RemoveItem, ignores an unknown line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*cart.Cart, error) {
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		if _, ok := c.Line(lineID); !ok && quantity > 0 {
			return domain.ErrNotFound
		}
		c.UpdateQuantity(lineID, quantity)
		return nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*cart.Cart, error) {
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		c.RemoveItem(lineID)
		return nil
	})
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return s.update(ctx, sessionID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Checkout places the session cart as an order. The busy flag is held for
// the whole submission; the cart is dropped once the order is stored.
// With WithSubmitTimeout set, a submission still running when the timeout
// hits is cancelled and reported as a collaborator failure.
func (s *Service) Checkout(ctx context.Context, sessionID string, customer checkout.Customer, delivery checkout.Delivery) (checkout.Confirmation, error) {
	release, err := s.carts.Acquire(ctx, sessionID)
	if err != nil {
		return checkout.Confirmation{}, storeError("acquire cart", err)
	}
	defer release()

	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return checkout.Confirmation{}, storeError("load cart", err)
	}

	conf, err := s.checkout.PlaceOrder(ctx, c, customer, delivery, s.orders)
	if err != nil {
		return checkout.Confirmation{}, err
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Error("order placed but cart not cleared",
			zap.String("session_id", sessionID),
			zap.String("reference", conf.OrderReference),
			zap.Error(err))
	}
	return conf, nil
}

// OrderQRCode renders the order reference as a PNG QR code for the
// delivery slip.
func (s *Service) OrderQRCode(ctx context.Context, reference string) ([]byte, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.ErrNotFound
	}
	o, err := s.orders.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.CollaboratorError{Op: "get order", Err: err}
	}
	png, err := qrcode.Encode(o.Reference, qrcode.Medium, qrSize)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func (s *Service) update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := s.carts.Update(ctx, sessionID, fn)
	if err != nil {
		return nil, storeError("update cart", err)
	}
	return c, nil
}

func storeError(op string, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, cartstore.ErrBusy):
		return ErrSubmissionInProgress
	case errors.Is(err, domain.ErrNotFound), errors.As(err, &verr):
		return err
	default:
		return &domain.CollaboratorError{Op: op, Err: err}
	}
}
