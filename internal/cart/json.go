package cart

import (
	"encoding/json"
	"fmt"

	"parfumerie/internal/domain"
)

const (
	kindPerfume = "perfume"
	kindBouquet = "bouquet"
)

type cartJSON struct {
	Lines []lineJSON `json:"lines"`
}

type lineJSON struct {
	Type        string          `json:"type"`
	ID          string          `json:"id"`
	Quantity    int             `json:"quantity"`
	Perfume     *domain.Perfume `json:"perfume,omitempty"`
	Components  []componentJSON `json:"components,omitempty"`
	IsGift      bool            `json:"isGift,omitempty"`
	GiftMessage string          `json:"giftMessage,omitempty"`
}

type componentJSON struct {
	Perfume  domain.Perfume `json:"perfume"`
	Quantity int            `json:"quantity"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	out := cartJSON{Lines: make([]lineJSON, 0, len(c.lines))}
	for _, item := range c.lines {
		switch it := item.(type) {
		case *SingleItem:
			p := it.Perfume
			out.Lines = append(out.Lines, lineJSON{
				Type:     kindPerfume,
				ID:       it.ID,
				Quantity: it.Quantity,
				Perfume:  &p,
			})
		case *BouquetItem:
			comps := make([]componentJSON, len(it.Components))
			for i, comp := range it.Components {
				comps[i] = componentJSON{Perfume: comp.Perfume, Quantity: comp.Quantity}
			}
			out.Lines = append(out.Lines, lineJSON{
				Type:        kindBouquet,
				ID:          it.ID,
				Quantity:    it.Quantity,
				Components:  comps,
				IsGift:      it.IsGift,
				GiftMessage: it.GiftMessage,
			})
		default:
			panic(unknownItem(item))
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON replaces the cart lines. The id generator is kept.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var in cartJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	lines := make([]LineItem, 0, len(in.Lines))
	for i, l := range in.Lines {
		if l.ID == "" || l.Quantity < 1 {
			return fmt.Errorf("cart: line %d: missing id or quantity", i)
		}
		switch l.Type {
		case kindPerfume:
			if l.Perfume == nil {
				return fmt.Errorf("cart: line %d: perfume line without perfume", i)
			}
			lines = append(lines, &SingleItem{ID: l.ID, Perfume: *l.Perfume, Quantity: l.Quantity})
		case kindBouquet:
			if len(l.Components) == 0 {
				return fmt.Errorf("cart: line %d: bouquet without components", i)
			}
			comps := make([]BouquetComponent, len(l.Components))
			for j, comp := range l.Components {
				comps[j] = BouquetComponent{Perfume: comp.Perfume, Quantity: comp.Quantity}
			}
			b := &BouquetItem{
				ID:         l.ID,
				Components: comps,
				Quantity:   l.Quantity,
				IsGift:     l.IsGift,
			}
			if l.IsGift {
				b.GiftMessage = l.GiftMessage
			}
			lines = append(lines, b)
		default:
			return fmt.Errorf("cart: line %d: unknown type %q", i, l.Type)
		}
	}
	c.lines = lines
	return nil
}
