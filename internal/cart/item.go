package cart

import (
	"fmt"
	"strconv"
	"strings"

	"parfumerie/internal/currency"
	"parfumerie/internal/domain"
)

// LineItem is one of *SingleItem or *BouquetItem. The set is closed; code
// that switches over it panics on anything else.
type LineItem interface {
	lineItem()
}

// SingleItem is one perfume bought on its own.
type SingleItem struct {
	ID       string
	Perfume  domain.Perfume
	Quantity int
}

// BouquetComponent is one perfume inside a bouquet with the number of
// bottles of it per bouquet.
type BouquetComponent struct {
	Perfume  domain.Perfume
	Quantity int
}

// BouquetItem is a custom assembly of perfumes. Components are sorted by
// perfume id. GiftMessage is empty unless IsGift is set.
type BouquetItem struct {
	ID          string
	Components  []BouquetComponent
	Quantity    int
	IsGift      bool
	GiftMessage string
}

func (*SingleItem) lineItem()  {}
func (*BouquetItem) lineItem() {}

// UnitPrice is the rounded perfume price.
func (s *SingleItem) UnitPrice() int64 {
	return currency.ToMinorInteger(s.Perfume.Price)
}

// UnitPrice is the price of one bouquet: each component's rounded price
// times its per-bouquet quantity.
func (b *BouquetItem) UnitPrice() int64 {
	var total int64
	for _, c := range b.Components {
		total += currency.ToMinorInteger(c.Perfume.Price) * int64(c.Quantity)
	}
	return total
}

// Key is the canonical component signature, "id:qty" pairs joined by "|".
func (b *BouquetItem) Key() string {
	parts := make([]string, len(b.Components))
	for i, c := range b.Components {
		parts[i] = c.Perfume.ID + ":" + strconv.Itoa(c.Quantity)
	}
	return strings.Join(parts, "|")
}

// BottleCount is the number of bottles in a single bouquet.
func (b *BouquetItem) BottleCount() int {
	n := 0
	for _, c := range b.Components {
		n += c.Quantity
	}
	return n
}

func (b *BouquetItem) sameAs(key, message string, isGift bool) bool {
	return b.IsGift == isGift && b.GiftMessage == message && b.Key() == key
}

// LineID returns the cart-local id of item.
func LineID(item LineItem) string {
	switch it := item.(type) {
	case *SingleItem:
		return it.ID
	case *BouquetItem:
		return it.ID
	default:
		panic(unknownItem(item))
	}
}

// Quantity returns the line quantity of item.
func Quantity(item LineItem) int {
	switch it := item.(type) {
	case *SingleItem:
		return it.Quantity
	case *BouquetItem:
		return it.Quantity
	default:
		panic(unknownItem(item))
	}
}

// UnitPrice returns the whole-FCFA unit price of item.
func UnitPrice(item LineItem) int64 {
	switch it := item.(type) {
	case *SingleItem:
		return it.UnitPrice()
	case *BouquetItem:
		return it.UnitPrice()
	default:
		panic(unknownItem(item))
	}
}

// Subtotal returns unit price × quantity.
func Subtotal(item LineItem) int64 {
	return UnitPrice(item) * int64(Quantity(item))
}

func setQuantity(item LineItem, n int) {
	switch it := item.(type) {
	case *SingleItem:
		it.Quantity = n
	case *BouquetItem:
		it.Quantity = n
	default:
		panic(unknownItem(item))
	}
}

func cloneItem(item LineItem) LineItem {
	switch it := item.(type) {
	case *SingleItem:
		c := *it
		return &c
	case *BouquetItem:
		c := *it
		c.Components = append([]BouquetComponent(nil), it.Components...)
		return &c
	default:
		panic(unknownItem(item))
	}
}

func unknownItem(item LineItem) string {
	return fmt.Sprintf("cart: unknown line item %T", item)
}
