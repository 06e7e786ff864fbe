package models

import (
	"time"

	"github.com/gocql/gocql"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderDispatched OrderStatus = "dispatched"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// statusRank ordonne les statuts de la progression normale.
var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderProcessing: 2,
	OrderDispatched: 3,
	OrderDelivered:  4,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderCancelled
}

// CanTransition autorise les sauts en avant et l'annulation avant livraison.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s == OrderCancelled || s == OrderDelivered {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	from, ok := statusRank[s]
	next, ok2 := statusRank[to]
	return ok && ok2 && next > from
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentCODFeePaid PaymentStatus = "cod_fee_paid"
	PaymentFailed     PaymentStatus = "failed"
)

// Paid indique qu'un paiement en ligne (total ou frais COD) a été reçu.
func (p PaymentStatus) Paid() bool {
	return p == PaymentCompleted || p == PaymentCODFeePaid
}

// OrderItem est une photographie du produit au moment de la commande.
type OrderItem struct {
	ProductID gocql.UUID `json:"product_id"`
	Name      string     `json:"name"`
	SKU       string     `json:"sku"`
	Size      string     `json:"size,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
}

type Order struct {
	ID               string        `json:"order_id"`
	UserEmail        string        `json:"user_email"`
	Phone            string        `json:"phone"`
	DeliveryAddress  Address       `json:"delivery_address"`
	Items            []OrderItem   `json:"items"`
	Subtotal         float64       `json:"subtotal"`
	DeliveryCharge   float64       `json:"delivery_charge"`
	CODFee           float64       `json:"cod_fee"`
	Tax              float64       `json:"tax"`
	TotalAmount      float64       `json:"total_amount"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	OrderStatus      OrderStatus   `json:"order_status"`
	GatewayOrderID   string        `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string        `json:"gateway_payment_id,omitempty"`
	GatewaySignature string        `json:"-"`
	Shipment         ShipmentInfo  `json:"shipment"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// AmountDueOnline est le montant encaissé via la passerelle de paiement.
func (o Order) AmountDueOnline() float64 {
	if o.PaymentMethod == PaymentCOD {
		return o.CODFee
	}
	return o.TotalAmount
}

// TotalUnits retourne le nombre total d'articles de la commande.
func (o Order) TotalUnits() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

type PaymentUpdate struct {
	Status           PaymentStatus
	GatewayPaymentID string
	GatewaySignature string
}

type CheckoutRequest struct {
	Items           []CartItem    `json:"items"`
	Phone           string        `json:"phone" binding:"required"`
	DeliveryAddress Address       `json:"delivery_address" binding:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method" binding:"required"`
}

// OrderEvent est publié sur Kafka et sur le canal Redis du client.
type OrderEvent struct {
	Type      string        `json:"type"`
	OrderID   string        `json:"order_id"`
	UserEmail string        `json:"user_email"`
	Status    OrderStatus   `json:"order_status"`
	Payment   PaymentStatus `json:"payment_status"`
	At        time.Time     `json:"at"`
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventPaymentVerified    = "payment.verified"
)

// PaymentSession est renvoyé au client pour ouvrir le formulaire de la passerelle.
type PaymentSession struct {
	Provider       string `json:"provider"`
	KeyID          string `json:"key_id,omitempty"`
	GatewayOrderID string `json:"gateway_order_id"`
	ClientSecret   string `json:"client_secret,omitempty"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}
