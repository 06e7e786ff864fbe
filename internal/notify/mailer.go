package notify

import (
	"bytes"
	"context"
	"fmt"

	"wearxture_back_end/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

type Attachment struct {
	Name string
	Data []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer envoie un email déjà rendu.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTPMailer envoie via un relais SMTP authentifié.
type SMTPMailer struct {
	cfg  config.MailConfig
	from string
}

func NewSMTPMailer(cfg config.MailConfig, shopName string) *SMTPMailer {
	from := cfg.From
	if shopName != "" {
		from = fmt.Sprintf("%s <%s>", shopName, cfg.From)
	}
	return &SMTPMailer{cfg: cfg, from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return err
	}
	if err := out.To(msg.To); err != nil {
		return err
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	for _, a := range msg.Attachments {
		if err := out.AttachReader(a.Name, bytes.NewReader(a.Data)); err != nil {
			return err
		}
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("📤 Envoi de l'e-mail")
	return client.DialAndSendWithContext(ctx, out)
}

// LogMailer remplace le relais SMTP quand aucun hôte n'est configuré.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Warn().Str("to", msg.To).Str("subject", msg.Subject).Int("attachments", len(msg.Attachments)).
		Msg("⚠️ SMTP non configuré, e-mail non envoyé")
	return nil
}

// NewMailer choisit le relais SMTP si un hôte est configuré.
func NewMailer(cfg config.MailConfig, shopName string) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg, shopName)
}
