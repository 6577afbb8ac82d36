package checkout

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parfumerie/internal/cart"
	"parfumerie/internal/domain"
)

type stubStore struct {
	orderErr error
	linesErr error

	orderCalls int
	lineCalls  int
	lastOrder  domain.Order
	lastLines  []domain.OrderLine
	lastID     string
	createdAt  time.Time
}

func (s *stubStore) InsertOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	s.orderCalls++
	s.lastOrder = o
	if s.orderErr != nil {
		return domain.Order{}, s.orderErr
	}
	o.ID = "order-1"
	o.CreatedAt = s.createdAt
	return o, nil
}

func (s *stubStore) InsertOrderLines(_ context.Context, orderID string, lines []domain.OrderLine) error {
	s.lineCalls++
	s.lastID = orderID
	s.lastLines = lines
	return s.linesErr
}

func perfume(id string, price float64) domain.Perfume {
	return domain.Perfume{ID: id, Name: id, Category: domain.CategoryWomen, Price: price, InStock: true}
}

func sampleCart() *cart.Cart {
	c := cart.New()
	a, b := perfume("a", 15000), perfume("b", 20000)
	c.AddSingleItem(a, 2)
	c.AddBouquet([]domain.Perfume{a, a, b}, "Bonne fête", 3, true)
	return c
}

var validCustomer = Customer{FullName: "  Awa Diop ", Phone: "+221 77 000 00 00"}
var validDelivery = Delivery{Address: "Rue 10, Dakar", Note: " sonner deux fois "}

func TestBuildOrderPayload(t *testing.T) {
	c := sampleCart()
	p, err := BuildOrderPayload(c, validCustomer, validDelivery)
	require.NoError(t, err)

	assert.Equal(t, "Awa Diop", p.Customer.FullName)
	assert.Equal(t, "sonner deux fois", p.Delivery.Note)
	assert.Equal(t, MethodCashOnDelivery, p.Delivery.Method)
	assert.Equal(t, []IndividualItem{{PerfumeID: "a", Quantity: 2, UnitPrice: 15000}}, p.Items.Individual)
	require.Len(t, p.Items.Bouquets, 1)
	assert.Equal(t, BouquetOrder{
		Quantity:    3,
		IsGift:      true,
		GiftMessage: "Bonne fête",
		Components: []BouquetComponent{
			{PerfumeID: "a", QuantityPerBouquet: 2, UnitPrice: 15000},
			{PerfumeID: "b", QuantityPerBouquet: 1, UnitPrice: 20000},
		},
	}, p.Items.Bouquets[0])
	assert.Equal(t, c.Total(), p.TotalAmount)
	assert.Equal(t, int64(30000+3*50000), p.TotalAmount)
}

func TestBuildOrderPayloadValidation(t *testing.T) {
	cases := []struct {
		name     string
		cart     *cart.Cart
		customer Customer
		delivery Delivery
		field    string
	}{
		{"blank name", sampleCart(), Customer{FullName: "  ", Phone: "1"}, validDelivery, "customer.fullName"},
		{"blank phone", sampleCart(), Customer{FullName: "Awa", Phone: " "}, validDelivery, "customer.phone"},
		{"blank address", sampleCart(), validCustomer, Delivery{Address: "\t"}, "delivery.address"},
		{"other method", sampleCart(), validCustomer, Delivery{Method: "card", Address: "x"}, "delivery.method"},
		{"empty cart", cart.New(), validCustomer, validDelivery, "cart"},
		{"nil cart", nil, validCustomer, validDelivery, "cart"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildOrderPayload(tc.cart, tc.customer, tc.delivery)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestFlattenLinesMatchesTotal(t *testing.T) {
	c := sampleCart()
	p, err := BuildOrderPayload(c, validCustomer, validDelivery)
	require.NoError(t, err)

	lines := FlattenLines(p)
	require.Len(t, lines, 3)
	assert.False(t, lines[0].IsGiftBouquetItem)
	assert.Equal(t, "", lines[0].GiftMessage)
	assert.Equal(t, 6, lines[1].Quantity)
	assert.Equal(t, 3, lines[2].Quantity)
	assert.True(t, lines[2].IsGiftBouquetItem)
	assert.Equal(t, "Bonne fête", lines[2].GiftMessage)

	var sum int64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	assert.Equal(t, c.Total(), sum)
}

func TestFlattenLinesNonGiftBouquetStillFlagged(t *testing.T) {
	c := cart.New()
	c.AddBouquet([]domain.Perfume{perfume("a", 100)}, "hidden", 1, false)
	p, err := BuildOrderPayload(c, validCustomer, validDelivery)
	require.NoError(t, err)

	lines := FlattenLines(p)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].IsGiftBouquetItem)
	assert.Equal(t, "", lines[0].GiftMessage)
}

func TestSubmitSuccess(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &stubStore{createdAt: created}
	var gotPage Page
	var gotConf Confirmation
	co := New(
		WithReferenceGenerator(func() string { return "ORD-TEST-00001" }),
		WithCompletion(func(next Page, conf Confirmation) {
			gotPage, gotConf = next, conf
		}),
	)

	c := sampleCart()
	total := c.Total()
	conf, err := co.PlaceOrder(context.Background(), c, validCustomer, validDelivery, store)
	require.NoError(t, err)

	assert.Equal(t, Confirmation{
		OrderReference: "ORD-TEST-00001",
		CustomerName:   "Awa Diop",
		TotalAmount:    total,
		CreatedAt:      created,
	}, conf)
	assert.Equal(t, domain.OrderPending, store.lastOrder.Status)
	assert.Equal(t, "Rue 10, Dakar", store.lastOrder.DeliveryAddress)
	assert.Equal(t, "order-1", store.lastID)
	assert.Len(t, store.lastLines, 3)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, PageConfirmation, gotPage)
	assert.Equal(t, conf, gotConf)
}

func TestSubmitBlankPhoneNeverCallsStore(t *testing.T) {
	store := &stubStore{}
	c := sampleCart()
	_, err := New().PlaceOrder(context.Background(), c, Customer{FullName: "Awa"}, validDelivery, store)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, store.orderCalls)
	assert.Equal(t, 2, c.Len())
}

func TestSubmitLineFailureKeepsCart(t *testing.T) {
	store := &stubStore{linesErr: errors.New("connection reset")}
	completed := false
	co := New(WithCompletion(func(Page, Confirmation) { completed = true }))

	c := sampleCart()
	_, err := co.PlaceOrder(context.Background(), c, validCustomer, validDelivery, store)

	var cerr *domain.CollaboratorError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "insert order lines", cerr.Op)
	assert.Equal(t, 1, store.orderCalls)
	assert.Equal(t, 1, store.lineCalls)
	assert.Equal(t, 2, c.Len())
	assert.False(t, completed)
}

func TestSubmitHeaderFailure(t *testing.T) {
	store := &stubStore{orderErr: errors.New("duplicate key")}
	c := sampleCart()
	p, err := BuildOrderPayload(c, validCustomer, validDelivery)
	require.NoError(t, err)

	_, err = Submit(context.Background(), p, c, store)
	var cerr *domain.CollaboratorError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, store.lineCalls)
	assert.False(t, c.IsEmpty())
}

func TestSubmitFallsBackToClock(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	co := New(WithClock(func() time.Time { return now }))
	conf, err := co.PlaceOrder(context.Background(), sampleCart(), validCustomer, validDelivery, &stubStore{})
	require.NoError(t, err)
	assert.Equal(t, now, conf.CreatedAt)
}

func TestGenerateOrderReference(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{5}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref := GenerateOrderReference()
		assert.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 1)

	ref := referenceAt(time.UnixMilli(36 * 36))
	assert.Regexp(t, `^ORD-100-`, ref)
}

func TestParsePage(t *testing.T) {
	p, ok := ParsePage(" Confirmation ")
	assert.True(t, ok)
	assert.Equal(t, PageConfirmation, p)

	_, ok = ParsePage("admin")
	assert.False(t, ok)
}
