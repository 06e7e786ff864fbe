package orders

import (
	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/models"

	"github.com/shopspring/decimal"
)

// Pricing calcule les montants d'une commande.
type Pricing struct {
	DeliveryCharge        float64
	FreeDeliveryThreshold float64
	TaxRate               float64
	CODFee                float64
}

func PricingFromConfig(c config.ShopConfig) Pricing {
	return Pricing{
		DeliveryCharge:        c.DeliveryCharge,
		FreeDeliveryThreshold: c.FreeDeliveryThreshold,
		TaxRate:               c.TaxRate,
		CODFee:                c.CODFee,
	}
}

type Totals struct {
	Subtotal       float64
	DeliveryCharge float64
	Tax            float64
	CODFee         float64
	Total          float64
}

// Compute: les frais COD sont un acompte payé en ligne, déduit du montant
// encaissé à la livraison; ils ne s'ajoutent pas au total.
func (p Pricing) Compute(items []models.OrderItem, method models.PaymentMethod) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	subtotal = subtotal.Round(2)

	delivery := decimal.NewFromFloat(p.DeliveryCharge)
	if p.FreeDeliveryThreshold > 0 && subtotal.GreaterThanOrEqual(decimal.NewFromFloat(p.FreeDeliveryThreshold)) {
		delivery = decimal.Zero
	}
	tax := subtotal.Mul(decimal.NewFromFloat(p.TaxRate)).Round(2)
	total := subtotal.Add(delivery).Add(tax)

	codFee := decimal.Zero
	if method == models.PaymentCOD {
		codFee = decimal.Min(decimal.NewFromFloat(p.CODFee), total)
	}

	return Totals{
		Subtotal:       subtotal.InexactFloat64(),
		DeliveryCharge: delivery.InexactFloat64(),
		Tax:            tax.InexactFloat64(),
		CODFee:         codFee.InexactFloat64(),
		Total:          total.InexactFloat64(),
	}
}
