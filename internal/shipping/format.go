package shipping

import (
	"math"
	"strings"
	"time"

	"wearxture_back_end/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// HSN des articles textiles.
	defaultHSN     = 441122
	packageLength  = 25
	packageBreadth = 20
	packageHeight  = 10
	minWeightKg    = 0.5
	weightPerUnit  = 0.3
)

type AdhocItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Units        int    `json:"units"`
	SellingPrice int64  `json:"selling_price"`
	Discount     int64  `json:"discount"`
	Tax          int64  `json:"tax"`
	HSN          int    `json:"hsn"`
}

// AdhocOrder est le corps attendu par /orders/create/adhoc.
type AdhocOrder struct {
	OrderID             string      `json:"order_id"`
	OrderDate           string      `json:"order_date"`
	PickupLocation      string      `json:"pickup_location"`
	BillingCustomerName string      `json:"billing_customer_name"`
	BillingLastName     string      `json:"billing_last_name"`
	BillingAddress      string      `json:"billing_address"`
	BillingAddress2     string      `json:"billing_address_2,omitempty"`
	BillingCity         string      `json:"billing_city"`
	BillingPincode      string      `json:"billing_pincode"`
	BillingState        string      `json:"billing_state"`
	BillingCountry      string      `json:"billing_country"`
	BillingEmail        string      `json:"billing_email"`
	BillingPhone        string      `json:"billing_phone"`
	ShippingIsBilling   bool        `json:"shipping_is_billing"`
	OrderItems          []AdhocItem `json:"order_items"`
	PaymentMethod       string      `json:"payment_method"`
	ShippingCharges     int64       `json:"shipping_charges"`
	GiftwrapCharges     int64       `json:"giftwrap_charges"`
	TransactionCharges  int64       `json:"transaction_charges"`
	TotalDiscount       int64       `json:"total_discount"`
	SubTotal            int64       `json:"sub_total"`
	Length              float64     `json:"length"`
	Breadth             float64     `json:"breadth"`
	Height              float64     `json:"height"`
	Weight              float64     `json:"weight"`
}

// FormatOrder convertit une commande pour Shiprocket. Pour une commande COD,
// les frais déjà payés en ligne sont retranchés au prorata de chaque ligne.
func FormatOrder(o models.Order, pickup string, now time.Time) AdhocOrder {
	cod := o.PaymentMethod == models.PaymentCOD

	cartTotal := decimal.Zero
	for _, it := range o.Items {
		cartTotal = cartTotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	codFee := decimal.NewFromFloat(o.CODFee)

	items := make([]AdhocItem, 0, len(o.Items))
	var subTotal int64
	for _, it := range o.Items {
		price := decimal.NewFromFloat(it.Price)
		if cod && cartTotal.IsPositive() && codFee.IsPositive() {
			price = price.Sub(codFee.Div(cartTotal).Mul(price))
			if price.IsNegative() {
				price = decimal.Zero
			}
		}
		selling := price.Truncate(0).IntPart()
		items = append(items, AdhocItem{
			Name:         itemName(it),
			SKU:          itemSKU(it),
			Units:        it.Quantity,
			SellingPrice: selling,
			HSN:          defaultHSN,
		})
		subTotal += selling * int64(it.Quantity)
	}

	method := "Prepaid"
	if cod {
		method = "COD"
	}
	country := o.DeliveryAddress.Country
	if country == "" {
		country = "India"
	}
	phone := o.Phone
	if phone == "" {
		phone = o.DeliveryAddress.Phone
	}

	return AdhocOrder{
		OrderID:             o.ID,
		OrderDate:           now.Format("2006-01-02 15:04"),
		PickupLocation:      pickup,
		BillingCustomerName: customerName(o),
		BillingLastName:     o.DeliveryAddress.LastName,
		BillingAddress:      o.DeliveryAddress.Line1,
		BillingAddress2:     o.DeliveryAddress.Line2,
		BillingCity:         o.DeliveryAddress.City,
		BillingPincode:      o.DeliveryAddress.PostalCode,
		BillingState:        o.DeliveryAddress.State,
		BillingCountry:      country,
		BillingEmail:        o.UserEmail,
		BillingPhone:        phone,
		ShippingIsBilling:   true,
		OrderItems:          items,
		PaymentMethod:       method,
		ShippingCharges:     decimal.NewFromFloat(o.DeliveryCharge).Round(0).IntPart(),
		SubTotal:            subTotal,
		Length:              packageLength,
		Breadth:             packageBreadth,
		Height:              packageHeight,
		Weight:              PackageWeight(o.TotalUnits()),
	}
}

// PackageWeight estime le poids du colis en kilogrammes.
func PackageWeight(units int) float64 {
	w := math.Round(float64(units)*weightPerUnit*100) / 100
	return math.Max(minWeightKg, w)
}

func itemName(it models.OrderItem) string {
	name := it.Name
	if name == "" {
		name = "Product"
	}
	size := strings.TrimSpace(it.Size)
	switch strings.ToLower(size) {
	case "", "standard", "one size", "default":
		return name
	}
	return name + " (Size: " + size + ")"
}

func itemSKU(it models.OrderItem) string {
	if it.SKU != "" {
		return it.SKU
	}
	return "SKU-" + it.ProductID.String()
}

func customerName(o models.Order) string {
	a := o.DeliveryAddress
	if a.Name != "" {
		return a.Name
	}
	if a.FirstName != "" {
		return a.FirstName
	}
	if local, _, ok := strings.Cut(o.UserEmail, "@"); ok && local != "" {
		return local
	}
	return "Customer"
}
