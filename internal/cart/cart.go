// Package cart holds the shopping cart of one session: single perfumes and
// gift bouquets, with merge, pricing and identity rules.
package cart

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"parfumerie/internal/domain"
)

const linePrefix = "ci-"

// Cart is an ordered list of line items. The zero value is an empty cart.
// A Cart is not safe for concurrent use; the cart store serializes access
// per session.
type Cart struct {
	lines []LineItem
	newID func() string
}

// Option configures a Cart.
type Option func(*Cart)

// WithIDGenerator overrides the line id generator.
func WithIDGenerator(gen func() string) Option {
	return func(c *Cart) {
		c.newID = gen
	}
}

func New(opts ...Option) *Cart {
	c := &Cart{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cart) nextID() string {
	if c.newID != nil {
		return c.newID()
	}
	return linePrefix + uuid.NewString()
}

// AddSingleItem adds quantity bottles of p, merging into the existing line
// for the same perfume id. Non-positive quantities are ignored.
func (c *Cart) AddSingleItem(p domain.Perfume, quantity int) {
	if quantity <= 0 {
		return
	}
	for _, item := range c.lines {
		if s, ok := item.(*SingleItem); ok && s.Perfume.ID == p.ID {
			s.Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, &SingleItem{
		ID:       c.nextID(),
		Perfume:  p,
		Quantity: quantity,
	})
}

// AddBouquet adds quantity bouquets made of perfumes. A perfume listed n
// times appears once with a per-bouquet quantity of n. The gift message is
// trimmed and dropped when isGift is false. A bouquet with the same
// components, message and gift flag as an existing line is merged into it.
func (c *Cart) AddBouquet(perfumes []domain.Perfume, giftMessage string, quantity int, isGift bool) {
	if len(perfumes) == 0 || quantity <= 0 {
		return
	}

	components := groupComponents(perfumes)
	message := ""
	if isGift {
		message = strings.TrimSpace(giftMessage)
	}

	candidate := &BouquetItem{
		Components:  components,
		Quantity:    quantity,
		IsGift:      isGift,
		GiftMessage: message,
	}
	key := candidate.Key()
	for _, item := range c.lines {
		if b, ok := item.(*BouquetItem); ok && b.sameAs(key, message, isGift) {
			b.Quantity += quantity
			return
		}
	}
	candidate.ID = c.nextID()
	c.lines = append(c.lines, candidate)
}

func groupComponents(perfumes []domain.Perfume) []BouquetComponent {
	index := make(map[string]int, len(perfumes))
	var components []BouquetComponent
	for _, p := range perfumes {
		if i, ok := index[p.ID]; ok {
			components[i].Quantity++
			continue
		}
		index[p.ID] = len(components)
		components = append(components, BouquetComponent{Perfume: p, Quantity: 1})
	}
	slices.SortFunc(components, func(a, b BouquetComponent) int {
		return strings.Compare(a.Perfume.ID, b.Perfume.ID)
	})
	return components
}

// RemoveItem drops the line with the given id. Unknown ids are ignored.
func (c *Cart) RemoveItem(lineID string) {
	c.lines = slices.DeleteFunc(c.lines, func(item LineItem) bool {
		return LineID(item) == lineID
	})
}

// UpdateQuantity sets the quantity of a line in place. Zero or less removes
// the line.
func (c *Cart) UpdateQuantity(lineID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(lineID)
		return
	}
	for _, item := range c.lines {
		if LineID(item) == lineID {
			setQuantity(item, quantity)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total is the sum of line subtotals in whole FCFA.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.lines {
		total += Subtotal(item)
	}
	return total
}

// ItemCount sums line quantities. A bouquet counts as its bouquet
// quantity, not its bottle count.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.lines {
		n += Quantity(item)
	}
	return n
}

// Lines returns copies of the line items in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	for i, item := range c.lines {
		out[i] = cloneItem(item)
	}
	return out
}

// Line returns a copy of the line with the given id.
func (c *Cart) Line(lineID string) (LineItem, bool) {
	for _, item := range c.lines {
		if LineID(item) == lineID {
			return cloneItem(item), true
		}
	}
	return nil, false
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clone returns a deep copy sharing the id generator.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: c.Lines(), newID: c.newID}
}
