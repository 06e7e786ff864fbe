package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money":     Money,
	"title":     Title,
	"date":      func(t time.Time) string { return t.Format("January 2, 2006 at 03:04 PM") },
	"lineTotal": func(it models.OrderItem) float64 { return it.Price * float64(it.Quantity) },
}).ParseFS(templateFS, "templates/*.html"))

var statusMessages = map[models.OrderStatus]string{
	models.OrderConfirmed:  "Your order has been confirmed and is now being processed.",
	models.OrderProcessing: "We're preparing your items for shipment.",
	models.OrderDispatched: "Your order has been dispatched and is on its way!",
	models.OrderDelivered:  "Your order has been delivered. Enjoy your new items!",
	models.OrderCancelled:  "Your order has been cancelled.",
}

// Money formate un montant en roupies.
func Money(v float64) string {
	return "₹" + decimal.NewFromFloat(v).StringFixed(2)
}

// Title transforme "cod_fee_paid" en "Cod Fee Paid".
func Title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// view est le contexte commun à tous les gabarits.
type view struct {
	Title         string
	Shop          config.ShopConfig
	Year          int
	Order         models.Order
	COD           bool
	DueOnDelivery float64
	OrdersURL     string
	OrderURL      string
	StatusTitle   string
	StatusMessage string
	QRCode        template.URL
	CustomerName  string
	ShopURL       string
}

func newView(shop config.ShopConfig, baseURL string, o models.Order) view {
	cod := o.PaymentMethod == models.PaymentCOD
	due := 0.0
	if cod {
		due, _ = decimal.NewFromFloat(o.TotalAmount).Sub(decimal.NewFromFloat(o.CODFee)).Float64()
	}
	base := strings.TrimRight(baseURL, "/")
	return view{
		Shop:          shop,
		Year:          time.Now().Year(),
		Order:         o,
		COD:           cod,
		DueOnDelivery: due,
		OrdersURL:     base + "/orders",
		OrderURL:      base + "/order/" + o.ID,
		ShopURL:       base + "/products",
	}
}

func render(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("gabarit %s: %w", name, err)
	}
	return buf.String(), nil
}

func statusMessage(s models.OrderStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return fmt.Sprintf("Your order status has been updated to %s.", s)
}
