// Package checkout turns a cart into a persisted cash-on-delivery order.
package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"parfumerie/internal/cart"
	"parfumerie/internal/domain"
)

// OrderStore persists order headers and their lines.
type OrderStore interface {
	// InsertOrder stores the header and returns it with ID and CreatedAt set.
	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	InsertOrderLines(ctx context.Context, orderID string, lines []domain.OrderLine) error
}

// Confirmation is shown to the customer once the order is stored.
// CustomerName is the trimmed name, as written to the order header.
type Confirmation struct {
	OrderReference string    `json:"orderReference"`
	CustomerName   string    `json:"customerName"`
	TotalAmount    int64     `json:"totalAmount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Checkout struct {
	logger     *zap.Logger
	now        func() time.Time
	reference  func(time.Time) string
	onComplete Completion
}

type Option func(*Checkout)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Checkout) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Checkout) {
		c.now = now
	}
}

func WithReferenceGenerator(gen func() string) Option {
	return func(c *Checkout) {
		c.reference = func(time.Time) string { return gen() }
	}
}

// WithCompletion registers the navigation hand-off run after a successful
// submission.
func WithCompletion(fn Completion) Option {
	return func(c *Checkout) {
		c.onComplete = fn
	}
}

func New(opts ...Option) *Checkout {
	c := &Checkout{
		logger:    zap.NewNop(),
		now:       time.Now,
		reference: referenceAt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCheckout = New()

// Submit stores p through store using the default Checkout.
func Submit(ctx context.Context, p OrderPayload, c *cart.Cart, store OrderStore) (Confirmation, error) {
	return defaultCheckout.Submit(ctx, p, c, store)
}

// Submit writes the order header with status pending, then its flattened
// lines. A store failure is returned as *domain.CollaboratorError and the
// cart is left untouched; on success the cart is cleared. A header written
// before a failed line insert is not removed.
func (co *Checkout) Submit(ctx context.Context, p OrderPayload, c *cart.Cart, store OrderStore) (Confirmation, error) {
	if len(p.Items.Individual) == 0 && len(p.Items.Bouquets) == 0 {
		return Confirmation{}, &domain.ValidationError{Field: "cart", Message: msgEmptyCart}
	}

	header := domain.Order{
		Reference:       co.reference(co.now()),
		CustomerName:    p.Customer.FullName,
		CustomerPhone:   p.Customer.Phone,
		DeliveryAddress: p.Delivery.Address,
		DeliveryNote:    p.Delivery.Note,
		TotalAmount:     p.TotalAmount,
		Status:          domain.OrderPending,
	}

	stored, err := store.InsertOrder(ctx, header)
	if err != nil {
		co.logger.Error("checkout: insert order failed",
			zap.String("reference", header.Reference), zap.Error(err))
		return Confirmation{}, &domain.CollaboratorError{Op: "insert order", Err: err}
	}

	lines := FlattenLines(p)
	if err := store.InsertOrderLines(ctx, stored.ID, lines); err != nil {
		co.logger.Error("checkout: insert order lines failed",
			zap.String("reference", header.Reference),
			zap.String("order_id", stored.ID),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return Confirmation{}, &domain.CollaboratorError{Op: "insert order lines", Err: err}
	}

	createdAt := stored.CreatedAt
	if createdAt.IsZero() {
		createdAt = co.now()
	}
	conf := Confirmation{
		OrderReference: header.Reference,
		CustomerName:   header.CustomerName,
		TotalAmount:    header.TotalAmount,
		CreatedAt:      createdAt,
	}
	if c != nil {
		c.Clear()
	}
	co.logger.Info("checkout: order placed",
		zap.String("reference", conf.OrderReference),
		zap.String("order_id", stored.ID),
		zap.Int64("total", conf.TotalAmount),
		zap.Int("lines", len(lines)))

	if co.onComplete != nil {
		co.onComplete(PageConfirmation, conf)
	}
	return conf, nil
}

// PlaceOrder builds the payload from c and submits it.
func (co *Checkout) PlaceOrder(ctx context.Context, c *cart.Cart, customer Customer, delivery Delivery, store OrderStore) (Confirmation, error) {
	p, err := BuildOrderPayload(c, customer, delivery)
	if err != nil {
		return Confirmation{}, err
	}
	return co.Submit(ctx, p, c, store)
}
