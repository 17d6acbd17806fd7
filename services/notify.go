package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cockroach-creatives/studio-backend/config"
	"github.com/cockroach-creatives/studio-backend/models"
)

// EnquiryNotifier pushes new contact enquiries to the studio team by email
// and, when Twilio is configured, by SMS. Delivery is best effort: a failed
// notification is logged and never surfaces to the visitor.
type EnquiryNotifier struct {
	mailer     *Mailer
	texter     *Texter
	recipients []string
	logger     zerolog.Logger
}

// NewEnquiryNotifier wires the configured channels. Recipients come from
// ENQUIRY_NOTIFY_EMAILS (comma separated); without them email is skipped.
func NewEnquiryNotifier(mailer *Mailer, texter *Texter, cfg map[string]string) *EnquiryNotifier {
	var recipients []string
	for _, addr := range strings.Split(config.GetString(cfg, "ENQUIRY_NOTIFY_EMAILS", ""), ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return &EnquiryNotifier{
		mailer:     mailer,
		texter:     texter,
		recipients: recipients,
		logger:     log.With().Str("serviceName", "enquiryNotifier").Logger(),
	}
}

// NotifyNewEnquiry sends the enquiry to every configured channel.
func (n *EnquiryNotifier) NotifyNewEnquiry(e *models.Enquiry) {
	if n.mailer != nil && len(n.recipients) > 0 {
		subject := fmt.Sprintf("New enquiry from %s", e.Name)
		if err := n.mailer.Send(subject, enquiryEmailBody(e), n.recipients); err != nil {
			n.logger.Error().Err(err).Str("enquiryId", e.ID.String()).Msg("Failed to email enquiry notification")
		}
	}

	if n.texter != nil {
		body := fmt.Sprintf("New enquiry from %s (%s)", e.Name, e.Email)
		if err := n.texter.Send(body); err != nil {
			n.logger.Error().Err(err).Str("enquiryId", e.ID.String()).Msg("Failed to text enquiry notification")
		}
	}
}

func enquiryEmailBody(e *models.Enquiry) string {
	var b strings.Builder
	b.WriteString("<h2>New enquiry</h2>")
	b.WriteString(fmt.Sprintf("<p><strong>Name:</strong> %s</p>", html.EscapeString(e.Name)))
	b.WriteString(fmt.Sprintf("<p><strong>Email:</strong> %s</p>", html.EscapeString(e.Email)))
	if e.Phone != "" {
		b.WriteString(fmt.Sprintf("<p><strong>Phone:</strong> %s</p>", html.EscapeString(e.Phone)))
	}
	b.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(e.Message)))
	return b.String()
}
