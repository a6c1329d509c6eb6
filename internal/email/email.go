// Package email is the boundary to the notification collaborator. Real
// delivery is external to this system; the shipped implementation records the
// send in the log.
package email

import (
	"context"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Sender delivers an invoice to a customer.
type Sender interface {
	SendInvoice(ctx context.Context, recipient string, invoice *model.Invoice) error
}

// LogSender is a Sender that only logs the delivery.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// SendInvoice logs the invoice delivery.
func (s *LogSender) SendInvoice(ctx context.Context, recipient string, invoice *model.Invoice) error {
	s.logger.Info().
		Str("recipient", recipient).
		Str("invoice_number", invoice.InvoiceNumber).
		Float64("total", invoice.Total).
		Msg("invoice email sent")
	return nil
}
