package service

import (
	"context"
	"log/slog"

	"github.com/SVG-campus/ContractKit/model"
)

// Notifier delivers lifecycle emails. Delivery is best-effort: the caller
// never fails an operation because a notification could not be sent.
type Notifier interface {
	ContractSent(ctx context.Context, contract *model.Contract, signingURL string)
	ContractSigned(ctx context.Context, contract *model.Contract)
	InvoiceSent(ctx context.Context, invoice *model.Invoice)
}

// LogNotifier records would-be emails in the structured log. It stands in
// until an email provider is wired up.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) ContractSent(ctx context.Context, contract *model.Contract, signingURL string) {
	slog.InfoContext(ctx, "notify: contract sent",
		"contract_id", contract.ID,
		"client_email", contract.ClientEmail,
		"signing_url", signingURL)
}

func (n *LogNotifier) ContractSigned(ctx context.Context, contract *model.Contract) {
	slog.InfoContext(ctx, "notify: contract signed",
		"contract_id", contract.ID,
		"client_email", contract.ClientEmail)
}

func (n *LogNotifier) InvoiceSent(ctx context.Context, invoice *model.Invoice) {
	slog.InfoContext(ctx, "notify: invoice sent",
		"invoice_id", invoice.ID,
		"client_email", invoice.ClientEmail)
}
