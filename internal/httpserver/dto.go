package httpserver

import (
	"time"

	"parfumerie/internal/cart"
	"parfumerie/internal/checkout"
	"parfumerie/internal/currency"
	"parfumerie/internal/domain"
)

type addItemRequest struct {
	PerfumeID string `json:"perfumeId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type addBouquetRequest struct {
	PerfumeIDs  []string `json:"perfumeIds" binding:"required"`
	Quantity    *int     `json:"quantity"`
	IsGift      bool     `json:"isGift"`
	GiftMessage string   `json:"giftMessage"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type checkoutRequest struct {
	Customer checkout.Customer `json:"customer"`
	Delivery checkout.Delivery `json:"delivery"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type perfumeResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     domain.Category `json:"category"`
	Size         string          `json:"size"`
	Price        int64           `json:"price"`
	PriceDisplay string          `json:"priceDisplay"`
	ImageURL     string          `json:"imageUrl"`
	Description  string          `json:"description"`
	InStock      bool            `json:"inStock"`
}

type componentResponse struct {
	Perfume  perfumeResponse `json:"perfume"`
	Quantity int             `json:"quantity"`
}

type lineResponse struct {
	Type             string              `json:"type"`
	ID               string              `json:"id"`
	Quantity         int                 `json:"quantity"`
	UnitPrice        int64               `json:"unitPrice"`
	UnitPriceDisplay string              `json:"unitPriceDisplay"`
	Subtotal         int64               `json:"subtotal"`
	SubtotalDisplay  string              `json:"subtotalDisplay"`
	Perfume          *perfumeResponse    `json:"perfume,omitempty"`
	Components       []componentResponse `json:"components,omitempty"`
	IsGift           bool                `json:"isGift,omitempty"`
	GiftMessage      string              `json:"giftMessage,omitempty"`
}

type cartResponse struct {
	Lines        []lineResponse `json:"lines"`
	ItemCount    int            `json:"itemCount"`
	Total        int64          `json:"total"`
	TotalDisplay string         `json:"totalDisplay"`
}

type confirmationResponse struct {
	OrderReference string    `json:"orderReference"`
	CustomerName   string    `json:"customerName"`
	TotalAmount    int64     `json:"totalAmount"`
	TotalDisplay   string    `json:"totalDisplay"`
	CreatedAt      time.Time `json:"createdAt"`
}

type checkoutResponse struct {
	Next         checkout.Page        `json:"next"`
	Confirmation confirmationResponse `json:"confirmation"`
}

func toPerfumeResponse(p domain.Perfume) perfumeResponse {
	price := currency.ToMinorInteger(p.Price)
	return perfumeResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Size:         p.Size,
		Price:        price,
		PriceDisplay: currency.FormatAmount(price),
		ImageURL:     p.ImageURL,
		Description:  p.Description,
		InStock:      p.InStock,
	}
}

func toCartResponse(c *cart.Cart) cartResponse {
	lines := c.Lines()
	out := cartResponse{
		Lines:        make([]lineResponse, 0, len(lines)),
		ItemCount:    c.ItemCount(),
		Total:        c.Total(),
		TotalDisplay: currency.FormatAmount(c.Total()),
	}
	for _, line := range lines {
		unit, sub := cart.UnitPrice(line), cart.Subtotal(line)
		resp := lineResponse{
			ID:               cart.LineID(line),
			Quantity:         cart.Quantity(line),
			UnitPrice:        unit,
			UnitPriceDisplay: currency.FormatAmount(unit),
			Subtotal:         sub,
			SubtotalDisplay:  currency.FormatAmount(sub),
		}
		switch it := line.(type) {
		case *cart.SingleItem:
			p := toPerfumeResponse(it.Perfume)
			resp.Type = "perfume"
			resp.Perfume = &p
		case *cart.BouquetItem:
			resp.Type = "bouquet"
			resp.IsGift = it.IsGift
			resp.GiftMessage = it.GiftMessage
			for _, comp := range it.Components {
				resp.Components = append(resp.Components, componentResponse{
					Perfume:  toPerfumeResponse(comp.Perfume),
					Quantity: comp.Quantity,
				})
			}
		default:
			panic("httpserver: unexpected line item")
		}
		out.Lines = append(out.Lines, resp)
	}
	return out
}

func toConfirmationResponse(conf checkout.Confirmation) confirmationResponse {
	return confirmationResponse{
		OrderReference: conf.OrderReference,
		CustomerName:   conf.CustomerName,
		TotalAmount:    conf.TotalAmount,
		TotalDisplay:   currency.FormatAmount(conf.TotalAmount),
		CreatedAt:      conf.CreatedAt,
	}
}
