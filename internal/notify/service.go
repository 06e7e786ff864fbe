package notify

import (
	"context"
	"fmt"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/models"

	"github.com/rs/zerolog/log"
)

// Service envoie les emails transactionnels liés aux commandes.
type Service struct {
	mailer  Mailer
	pdf     PDFRenderer
	shop    config.ShopConfig
	baseURL string
}

// NewService: pdf peut être nil, la facture est alors envoyée sans pièce jointe.
func NewService(mailer Mailer, pdf PDFRenderer, shop config.ShopConfig, baseURL string) *Service {
	return &Service{mailer: mailer, pdf: pdf, shop: shop, baseURL: baseURL}
}

// OrderConfirmed envoie la confirmation puis la facture. Les erreurs sont journalisées.
func (s *Service) OrderConfirmed(ctx context.Context, o models.Order) {
	if err := s.SendConfirmation(ctx, o); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("❌ Email de confirmation non envoyé")
	}
	if err := s.SendInvoice(ctx, o); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("❌ Facture non envoyée")
	}
}

// StatusChanged prévient le client du nouveau statut.
func (s *Service) StatusChanged(ctx context.Context, o models.Order) {
	if o.OrderStatus == models.OrderPending {
		return
	}
	v := newView(s.shop, s.baseURL, o)
	v.StatusTitle = Title(string(o.OrderStatus))
	v.StatusMessage = statusMessage(o.OrderStatus)
	v.Title = "Order Status Update"
	subject := fmt.Sprintf("Order #%s Status Update: %s", o.ID, v.StatusTitle)
	if err := s.send(ctx, o.UserEmail, subject, "status.html", v); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("❌ Email de statut non envoyé")
		return
	}
	log.Info().Str("order_id", o.ID).Str("status", string(o.OrderStatus)).Msg("📧 Email de statut envoyé")
}

func (s *Service) SendConfirmation(ctx context.Context, o models.Order) error {
	v := newView(s.shop, s.baseURL, o)
	v.Title = "Order Confirmation"
	subject := fmt.Sprintf("Order Confirmation - #%s", o.ID)
	if err := s.send(ctx, o.UserEmail, subject, "confirmation.html", v); err != nil {
		return err
	}
	log.Info().Str("order_id", o.ID).Msg("📧 Email de confirmation envoyé")
	return nil
}

// SendInvoice envoie la facture PDF en pièce jointe.
func (s *Service) SendInvoice(ctx context.Context, o models.Order) error {
	v := newView(s.shop, s.baseURL, o)
	v.Title = "Your Invoice from " + s.shop.Name
	html, err := render("invoice_email.html", v)
	if err != nil {
		return err
	}

	msg := Message{To: o.UserEmail, Subject: fmt.Sprintf("Invoice for Order #%s", o.ID), HTML: html}
	if s.pdf != nil {
		pdf, err := s.InvoicePDF(ctx, o)
		if err != nil {
			return fmt.Errorf("génération du PDF: %w", err)
		}
		msg.Attachments = []Attachment{{Name: fmt.Sprintf("%s_Invoice_%s.pdf", s.shop.Name, o.ID), Data: pdf}}
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}
	log.Info().Str("order_id", o.ID).Msg("📧 Facture envoyée")
	return nil
}

func (s *Service) send(ctx context.Context, to, subject, tmpl string, v view) error {
	html, err := render(tmpl, v)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: html})
}

// Welcome accueille un nouveau client. Les erreurs sont journalisées.
func (s *Service) Welcome(ctx context.Context, u models.User) {
	v := newView(s.shop, s.baseURL, models.Order{})
	v.Title = "Welcome to " + s.shop.Name
	v.CustomerName = u.Name
	if v.CustomerName == "" {
		v.CustomerName = "there"
	}
	if err := s.send(ctx, u.Email, fmt.Sprintf("Welcome to %s!", s.shop.Name), "welcome.html", v); err != nil {
		log.Error().Err(err).Str("user_id", u.ID.String()).Msg("❌ Email de bienvenue non envoyé")
		return
	}
	log.Info().Str("user_id", u.ID.String()).Msg("📧 Email de bienvenue envoyé")
}
