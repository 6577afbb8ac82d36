package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is the persisted order header.
type Order struct {
	ID              string
	Reference       string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	DeliveryNote    string
	TotalAmount     int64
	Status          OrderStatus
	CreatedAt       time.Time
	Lines           []OrderLine
}

// OrderLine is one persisted order item. Bouquet components are stored as
// individual lines flagged IsGiftBouquetItem.
type OrderLine struct {
	ID                string
	OrderID           string
	PerfumeID         string
	Quantity          int
	UnitPrice         int64
	IsGiftBouquetItem bool
	GiftMessage       string
	CreatedAt         time.Time
}

// Subtotal is Quantity × UnitPrice.
func (l OrderLine) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}
