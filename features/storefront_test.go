package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"parfumerie/internal/cart"
	"parfumerie/internal/checkout"
	"parfumerie/internal/currency"
	"parfumerie/internal/domain"
)

type recordingStore struct {
	orders   []domain.Order
	lines    []domain.OrderLine
	linesErr error
}

func (s *recordingStore) InsertOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	o.ID = fmt.Sprintf("order-%d", len(s.orders)+1)
	o.CreatedAt = time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	s.orders = append(s.orders, o)
	return o, nil
}

func (s *recordingStore) InsertOrderLines(_ context.Context, _ string, lines []domain.OrderLine) error {
	if s.linesErr != nil {
		return s.linesErr
	}
	s.lines = append(s.lines, lines...)
	return nil
}

type storefrontTestContext struct {
	catalogue map[string]domain.Perfume
	cart      *cart.Cart
	store     *recordingStore
	conf      checkout.Confirmation
	err       error
}

func (s *storefrontTestContext) reset() {
	s.catalogue = map[string]domain.Perfume{}
	s.cart = cart.New()
	s.store = &recordingStore{}
	s.conf = checkout.Confirmation{}
	s.err = nil
}

func (s *storefrontTestContext) theCatalogueContains(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		price, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return err
		}
		id := row.Cells[0].Value
		s.catalogue[id] = domain.Perfume{
			ID:       id,
			Name:     row.Cells[1].Value,
			Category: domain.CategoryUnisex,
			Price:    price,
			InStock:  true,
		}
	}
	return nil
}

func (s *storefrontTestContext) perfumes(ids string) ([]domain.Perfume, error) {
	var out []domain.Perfume
	for _, id := range strings.Split(ids, ",") {
		p, ok := s.catalogue[strings.TrimSpace(id)]
		if !ok {
			return nil, fmt.Errorf("unknown perfume %q", id)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *storefrontTestContext) iAddOfPerfume(quantity int, id string) error {
	p, ok := s.catalogue[id]
	if !ok {
		return fmt.Errorf("unknown perfume %q", id)
	}
	s.cart.AddSingleItem(p, quantity)
	return nil
}

func (s *storefrontTestContext) iAddABouquetOf(ids string) error {
	return s.iAddOfABouquetOf(1, ids)
}

func (s *storefrontTestContext) iAddOfABouquetOf(quantity int, ids string) error {
	ps, err := s.perfumes(ids)
	if err != nil {
		return err
	}
	s.cart.AddBouquet(ps, "", quantity, false)
	return nil
}

func (s *storefrontTestContext) iAddAGiftBouquetOfWithMessage(ids, message string) error {
	ps, err := s.perfumes(ids)
	if err != nil {
		return err
	}
	s.cart.AddBouquet(ps, message, 1, true)
	return nil
}

func (s *storefrontTestContext) iSetTheQuantityOfTheFirstLineTo(quantity int) error {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return errors.New("cart is empty")
	}
	s.cart.UpdateQuantity(cart.LineID(lines[0]), quantity)
	return nil
}

func (s *storefrontTestContext) iRemoveLine(id string) error {
	s.cart.RemoveItem(id)
	return nil
}

func (s *storefrontTestContext) storingOrderLinesFails() error {
	s.store.linesErr = errors.New("connection reset")
	return nil
}

func (s *storefrontTestContext) iCheckOutAs(name, phone, address string) error {
	co := checkout.New(checkout.WithReferenceGenerator(func() string { return "ORD-TEST1" }))
	s.conf, s.err = co.PlaceOrder(context.Background(), s.cart,
		checkout.Customer{FullName: name, Phone: phone},
		checkout.Delivery{Address: address},
		s.store,
	)
	return nil
}

func (s *storefrontTestContext) theCartHasLines(n int) error {
	if s.cart.Len() != n {
		return fmt.Errorf("expected %d lines, got %d", n, s.cart.Len())
	}
	return nil
}

func (s *storefrontTestContext) theCartHoldsItems(n int) error {
	if s.cart.ItemCount() != n {
		return fmt.Errorf("expected %d items, got %d", n, s.cart.ItemCount())
	}
	return nil
}

func (s *storefrontTestContext) theCartTotalIs(total int64) error {
	if s.cart.Total() != total {
		return fmt.Errorf("expected total %d, got %d", total, s.cart.Total())
	}
	return nil
}

func (s *storefrontTestContext) theCartTotalReads(text string) error {
	if got := currency.FormatAmount(s.cart.Total()); got != text {
		return fmt.Errorf("expected %q, got %q", text, got)
	}
	return nil
}

func (s *storefrontTestContext) theCartIsEmpty() error {
	if !s.cart.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", s.cart.Len())
	}
	return nil
}

func (s *storefrontTestContext) theOrderIsConfirmed() error {
	if s.err != nil {
		return fmt.Errorf("expected confirmation, got error: %v", s.err)
	}
	if s.conf.OrderReference == "" {
		return errors.New("confirmation has no reference")
	}
	return nil
}

func (s *storefrontTestContext) thePersistedLinesAddUpTo(total int64) error {
	var sum int64
	for _, l := range s.store.lines {
		sum += l.Subtotal()
	}
	if sum != total {
		return fmt.Errorf("expected persisted sum %d, got %d", total, sum)
	}
	if s.conf.TotalAmount != total {
		return fmt.Errorf("expected confirmed total %d, got %d", total, s.conf.TotalAmount)
	}
	return nil
}

func (s *storefrontTestContext) checkoutFailsValidationOn(field string) error {
	var verr *domain.ValidationError
	if !errors.As(s.err, &verr) {
		return fmt.Errorf("expected validation error, got %v", s.err)
	}
	if verr.Field != field {
		return fmt.Errorf("expected field %q, got %q", field, verr.Field)
	}
	return nil
}

func (s *storefrontTestContext) checkoutFailsWithAStorageError() error {
	var cerr *domain.CollaboratorError
	if !errors.As(s.err, &cerr) {
		return fmt.Errorf("expected collaborator error, got %v", s.err)
	}
	return nil
}

func (s *storefrontTestContext) nothingWasStored() error {
	if len(s.store.orders) != 0 || len(s.store.lines) != 0 {
		return fmt.Errorf("expected no writes, got %d orders and %d lines", len(s.store.orders), len(s.store.lines))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalogue contains:$`, tc.theCatalogueContains)
	ctx.Step(`^storing order lines fails$`, tc.storingOrderLinesFails)

	// When steps
	ctx.Step(`^I add (-?\d+) of perfume "([^"]*)"$`, tc.iAddOfPerfume)
	ctx.Step(`^I add a bouquet of "([^"]*)"$`, tc.iAddABouquetOf)
	ctx.Step(`^I add (\d+) of a bouquet of "([^"]*)"$`, tc.iAddOfABouquetOf)
	ctx.Step(`^I add a gift bouquet of "([^"]*)" with message "([^"]*)"$`, tc.iAddAGiftBouquetOfWithMessage)
	ctx.Step(`^I set the quantity of the first line to (-?\d+)$`, tc.iSetTheQuantityOfTheFirstLineTo)
	ctx.Step(`^I remove line "([^"]*)"$`, tc.iRemoveLine)
	ctx.Step(`^I check out as "([^"]*)" with phone "([^"]*)" at "([^"]*)"$`, tc.iCheckOutAs)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart holds (\d+) items$`, tc.theCartHoldsItems)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart total reads "([^"]*)"$`, tc.theCartTotalReads)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the order is confirmed$`, tc.theOrderIsConfirmed)
	ctx.Step(`^the persisted lines add up to (\d+)$`, tc.thePersistedLinesAddUpTo)
	ctx.Step(`^checkout fails validation on "([^"]*)"$`, tc.checkoutFailsValidationOn)
	ctx.Step(`^checkout fails with a storage error$`, tc.checkoutFailsWithAStorageError)
	ctx.Step(`^nothing was stored$`, tc.nothingWasStored)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"storefront.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
