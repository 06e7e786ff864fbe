package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"html/template"
	"net/url"
	"time"

	"wearxture_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// UPIQR génère un QR de paiement UPI en data URI prêt pour <img src="...">.
func UPIQR(upiID, payee, ref string, amount float64) (template.URL, error) {
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", payee)
	q.Set("am", decimal.NewFromFloat(amount).StringFixed(2))
	q.Set("cu", "INR")
	q.Set("tn", ref)

	png, err := qrcode.Encode("upi://pay?"+q.Encode(), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

// PDFRenderer imprime un document HTML en PDF.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ChromePDF imprime via un Chrome headless piloté par chromedp.
type ChromePDF struct {
	Timeout time.Duration
}

func (r ChromePDF) Render(ctx context.Context, html string) ([]byte, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).WithPreferCSSPageSize(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// invoiceView ajoute le QR UPI quand un reste est dû à la livraison.
func (s *Service) invoiceView(o models.Order) (view, error) {
	v := newView(s.shop, s.baseURL, o)
	v.Title = "Invoice " + o.ID
	if s.shop.UPIID != "" && v.DueOnDelivery > 0 {
		qr, err := UPIQR(s.shop.UPIID, s.shop.Name, "INV-"+o.ID, v.DueOnDelivery)
		if err != nil {
			return v, err
		}
		v.QRCode = qr
	}
	return v, nil
}

// InvoiceHTML rend la facture d'une commande.
func (s *Service) InvoiceHTML(o models.Order) (string, error) {
	v, err := s.invoiceView(o)
	if err != nil {
		return "", err
	}
	return render("invoice.html", v)
}

// InvoicePDF rend la facture puis l'imprime en PDF.
func (s *Service) InvoicePDF(ctx context.Context, o models.Order) ([]byte, error) {
	if s.pdf == nil {
		return nil, errors.New("rendu PDF non configuré")
	}
	html, err := s.InvoiceHTML(o)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(ctx, html)
}
