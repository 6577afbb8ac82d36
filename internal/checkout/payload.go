package checkout

import (
	"strings"

	"parfumerie/internal/cart"
	"parfumerie/internal/currency"
	"parfumerie/internal/domain"
)

const (
	MethodCashOnDelivery = "cash_on_delivery"

	msgRequiredFields = "Veuillez remplir tous les champs obligatoires"
	msgEmptyCart      = "Votre panier est vide"
	msgUnknownMethod  = "Mode de livraison non disponible"
)

type Customer struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type Delivery struct {
	Method  string `json:"method"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

type IndividualItem struct {
	PerfumeID string `json:"perfumeId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type BouquetComponent struct {
	PerfumeID          string `json:"perfumeId"`
	QuantityPerBouquet int    `json:"quantityPerBouquet"`
	UnitPrice          int64  `json:"unitPrice"`
}

type BouquetOrder struct {
	Quantity    int                `json:"quantity"`
	IsGift      bool               `json:"isGift"`
	GiftMessage string             `json:"giftMessage"`
	Components  []BouquetComponent `json:"components"`
}

type Items struct {
	Individual []IndividualItem `json:"individual"`
	Bouquets   []BouquetOrder   `json:"bouquets"`
}

// OrderPayload is the cart and customer data captured at submission time.
// Unit prices are frozen as whole FCFA.
type OrderPayload struct {
	Customer    Customer `json:"customer"`
	Delivery    Delivery `json:"delivery"`
	Items       Items    `json:"items"`
	TotalAmount int64    `json:"totalAmount"`
}

// BuildOrderPayload validates customer and delivery data and snapshots the
// cart. Required fields are checked before the cart.
func BuildOrderPayload(c *cart.Cart, customer Customer, delivery Delivery) (OrderPayload, error) {
	customer.FullName = strings.TrimSpace(customer.FullName)
	customer.Phone = strings.TrimSpace(customer.Phone)
	delivery.Address = strings.TrimSpace(delivery.Address)
	delivery.Note = strings.TrimSpace(delivery.Note)
	delivery.Method = strings.TrimSpace(delivery.Method)

	switch {
	case customer.FullName == "":
		return OrderPayload{}, &domain.ValidationError{Field: "customer.fullName", Message: msgRequiredFields}
	case customer.Phone == "":
		return OrderPayload{}, &domain.ValidationError{Field: "customer.phone", Message: msgRequiredFields}
	case delivery.Address == "":
		return OrderPayload{}, &domain.ValidationError{Field: "delivery.address", Message: msgRequiredFields}
	}
	if delivery.Method == "" {
		delivery.Method = MethodCashOnDelivery
	}
	if delivery.Method != MethodCashOnDelivery {
		return OrderPayload{}, &domain.ValidationError{Field: "delivery.method", Message: msgUnknownMethod}
	}
	if c == nil || c.IsEmpty() {
		return OrderPayload{}, &domain.ValidationError{Field: "cart", Message: msgEmptyCart}
	}

	items := Items{
		Individual: []IndividualItem{},
		Bouquets:   []BouquetOrder{},
	}
	for _, line := range c.Lines() {
		switch it := line.(type) {
		case *cart.SingleItem:
			items.Individual = append(items.Individual, IndividualItem{
				PerfumeID: it.Perfume.ID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice(),
			})
		case *cart.BouquetItem:
			bq := BouquetOrder{
				Quantity:    it.Quantity,
				IsGift:      it.IsGift,
				GiftMessage: it.GiftMessage,
				Components:  make([]BouquetComponent, len(it.Components)),
			}
			for i, comp := range it.Components {
				bq.Components[i] = BouquetComponent{
					PerfumeID:          comp.Perfume.ID,
					QuantityPerBouquet: comp.Quantity,
					UnitPrice:          currency.ToMinorInteger(comp.Perfume.Price),
				}
			}
			items.Bouquets = append(items.Bouquets, bq)
		default:
			panic("checkout: unexpected line item")
		}
	}

	return OrderPayload{
		Customer:    customer,
		Delivery:    delivery,
		Items:       items,
		TotalAmount: c.Total(),
	}, nil
}

// FlattenLines expands a payload into persisted order lines: individual
// items first, then every bouquet component with its quantity multiplied
// by the bouquet quantity.
func FlattenLines(p OrderPayload) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(p.Items.Individual))
	for _, it := range p.Items.Individual {
		lines = append(lines, domain.OrderLine{
			PerfumeID: it.PerfumeID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	for _, bq := range p.Items.Bouquets {
		for _, comp := range bq.Components {
			lines = append(lines, domain.OrderLine{
				PerfumeID:         comp.PerfumeID,
				Quantity:          comp.QuantityPerBouquet * bq.Quantity,
				UnitPrice:         comp.UnitPrice,
				IsGiftBouquetItem: true,
				GiftMessage:       bq.GiftMessage,
			})
		}
	}
	return lines
}
