package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/pdf"
	"github.com/SVG-campus/ContractKit/store"
)

// BlobStore persists rendered documents and yields their public URL.
type BlobStore interface {
	StorePDF(ctx context.Context, objectName string, data []byte) (string, error)
}

// DocumentRenderer draws contracts and invoices to PDF bytes.
type DocumentRenderer interface {
	RenderContract(contract *model.Contract, contractor pdf.Party) ([]byte, error)
	RenderInvoice(invoice *model.Invoice, contractor pdf.Party) ([]byte, error)
}

// DeliveryService runs the document pipeline: gate, persist, snapshot,
// render, store, deliver. Rendering and storage failures leave a valid
// draft behind; the caller gets both the entity and the failure.
type DeliveryService struct {
	store    *store.Store
	gate     *SubscriptionService
	versions *VersionService
	renderer DocumentRenderer
	blobs    BlobStore
	notifier Notifier
	baseURL  string

	now func() time.Time
}

func NewDeliveryService(st *store.Store, gate *SubscriptionService, versions *VersionService, renderer DocumentRenderer, blobs BlobStore, notifier Notifier, baseURL string) *DeliveryService {
	return &DeliveryService{
		store:    st,
		gate:     gate,
		versions: versions,
		renderer: renderer,
		blobs:    blobs,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// ContractInput carries the fields a new contract is created from.
type ContractInput struct {
	ClientName         string    `json:"client_name"`
	ClientEmail        string    `json:"client_email"`
	ClientCompany      string    `json:"client_company"`
	ProjectName        string    `json:"project_name"`
	ProjectDescription string    `json:"project_description"`
	ScopeOfWork        string    `json:"scope_of_work"`
	Deliverables       string    `json:"deliverables"`
	Timeline           string    `json:"timeline"`
	TotalAmount        float64   `json:"total_amount"`
	PaymentSchedule    string    `json:"payment_schedule"`
	RevisionsIncluded  int       `json:"revisions_included"`
	GoverningState     string    `json:"governing_state"`
	EffectiveDate      time.Time `json:"effective_date"`
}

func (in *ContractInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.ClientName) == "" {
		missing = append(missing, "client_name")
	}
	if strings.TrimSpace(in.ClientEmail) == "" {
		missing = append(missing, "client_email")
	}
	if strings.TrimSpace(in.ScopeOfWork) == "" {
		missing = append(missing, "scope_of_work")
	}
	if in.TotalAmount <= 0 {
		missing = append(missing, "total_amount")
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}

// InvoiceInput carries the fields a new invoice is created from.
type InvoiceInput struct {
	ClientName          string           `json:"client_name"`
	ClientEmail         string           `json:"client_email"`
	ClientCompany       string           `json:"client_company"`
	LineItems           []model.LineItem `json:"line_items"`
	TaxRate             float64          `json:"tax_rate"`
	PaymentTerms        string           `json:"payment_terms"`
	InvoiceDate         time.Time        `json:"invoice_date"`
	DueDate             time.Time        `json:"due_date"`
	Notes               string           `json:"notes"`
	PaymentInstructions string           `json:"payment_instructions"`
}

func (in *InvoiceInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.ClientName) == "" {
		missing = append(missing, "client_name")
	}
	if strings.TrimSpace(in.ClientEmail) == "" {
		missing = append(missing, "client_email")
	}
	if len(in.LineItems) == 0 {
		missing = append(missing, "line_items")
	}
	for _, item := range in.LineItems {
		if strings.TrimSpace(item.Description) == "" || item.Quantity <= 0 || item.Rate < 0 {
			missing = append(missing, "line_items")
			break
		}
	}
	if in.TaxRate < 0 {
		missing = append(missing, "tax_rate")
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}

// CreateContract persists a draft, records version 1, renders the PDF and
// stores it. A render or storage failure still returns the draft; the
// PDF can be regenerated later.
func (s *DeliveryService) CreateContract(ctx context.Context, principal model.Principal, in ContractInput) (*model.Contract, error) {
	if err := s.gate.RequireActive(ctx, principal); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	effective := in.EffectiveDate
	if effective.IsZero() {
		effective = now
	}

	contract := &model.Contract{
		UserID:             principal.UserID,
		ContractNumber:     fmt.Sprintf("CNT-%d", now.UnixMilli()),
		Status:             model.ContractDraft,
		ClientName:         strings.TrimSpace(in.ClientName),
		ClientEmail:        strings.TrimSpace(in.ClientEmail),
		ClientCompany:      strings.TrimSpace(in.ClientCompany),
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		ScopeOfWork:        in.ScopeOfWork,
		Deliverables:       in.Deliverables,
		Timeline:           in.Timeline,
		TotalAmount:        in.TotalAmount,
		PaymentSchedule:    in.PaymentSchedule,
		RevisionsIncluded:  in.RevisionsIncluded,
		GoverningState:     in.GoverningState,
		EffectiveDate:      effective,
	}
	if err := s.store.CreateContract(ctx, contract); err != nil {
		return nil, err
	}

	if _, err := s.versions.Record(ctx, principal, contract, "Contract created", model.ActionContractCreated); err != nil {
		return nil, err
	}

	if err := s.renderContractPDF(ctx, principal, contract); err != nil {
		return contract, err
	}
	return contract, nil
}

// CreateInvoice persists a draft with computed totals, renders the PDF
// and stores it. Invoices are not versioned.
func (s *DeliveryService) CreateInvoice(ctx context.Context, principal model.Principal, in InvoiceInput) (*model.Invoice, error) {
	if err := s.gate.RequireActive(ctx, principal); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	invoiceDate := in.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = now
	}
	dueDate := in.DueDate
	if dueDate.IsZero() {
		dueDate = invoiceDate.Add(30 * 24 * time.Hour)
	}
	s.applyInvoiceDefaults(ctx, principal, &in)

	invoice := &model.Invoice{
		UserID:              principal.UserID,
		InvoiceNumber:       fmt.Sprintf("INV-%d", now.UnixMilli()),
		Status:              model.InvoiceDraft,
		ClientName:          strings.TrimSpace(in.ClientName),
		ClientEmail:         strings.TrimSpace(in.ClientEmail),
		ClientCompany:       strings.TrimSpace(in.ClientCompany),
		LineItems:           model.LineItems(in.LineItems),
		TaxRate:             in.TaxRate,
		PaymentTerms:        in.PaymentTerms,
		InvoiceDate:         invoiceDate,
		DueDate:             dueDate,
		Notes:               in.Notes,
		PaymentInstructions: in.PaymentInstructions,
	}
	invoice.ComputeTotals()

	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, principal.UserID, model.ActionInvoiceCreated, nil, &invoice.ID, model.AuditDetails{
		"invoice_number": invoice.InvoiceNumber,
		"total":          invoice.Total,
	})

	if err := s.renderInvoicePDF(ctx, principal, invoice); err != nil {
		return invoice, err
	}
	return invoice, nil
}

// UpdateContract applies new terms to a draft or sent contract and records
// the change as the next version. The PDF is re-rendered from the new terms.
func (s *DeliveryService) UpdateContract(ctx context.Context, principal model.Principal, contractID string, in ContractInput, changeDescription string) (*model.Contract, error) {
	if err := s.gate.RequireActive(ctx, principal); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	contract, err := s.store.GetContractForUser(ctx, contractID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if contract.Status != model.ContractDraft && contract.Status != model.ContractSent {
		return nil, &model.TransitionError{Entity: "contract", From: string(contract.Status), To: string(contract.Status)}
	}

	contract.ClientName = strings.TrimSpace(in.ClientName)
	contract.ClientEmail = strings.TrimSpace(in.ClientEmail)
	contract.ClientCompany = strings.TrimSpace(in.ClientCompany)
	contract.ProjectName = in.ProjectName
	contract.ProjectDescription = in.ProjectDescription
	contract.ScopeOfWork = in.ScopeOfWork
	contract.Deliverables = in.Deliverables
	contract.Timeline = in.Timeline
	contract.TotalAmount = in.TotalAmount
	contract.PaymentSchedule = in.PaymentSchedule
	contract.RevisionsIncluded = in.RevisionsIncluded
	contract.GoverningState = in.GoverningState
	if !in.EffectiveDate.IsZero() {
		contract.EffectiveDate = in.EffectiveDate
	}

	if err := s.store.UpdateContractTerms(ctx, contract); err != nil {
		return nil, err
	}

	if changeDescription == "" {
		changeDescription = "Contract updated"
	}
	if _, err := s.versions.Record(ctx, principal, contract, changeDescription, model.ActionContractUpdated); err != nil {
		return nil, err
	}

	if err := s.renderContractPDF(ctx, principal, contract); err != nil {
		return contract, err
	}
	return contract, nil
}

// SendContract marks a draft contract sent and notifies the client with
// the signing link.
func (s *DeliveryService) SendContract(ctx context.Context, principal model.Principal, contractID string) (*model.Contract, error) {
	if err := s.gate.RequireActive(ctx, principal); err != nil {
		return nil, err
	}

	contract, err := s.store.GetContractForUser(ctx, contractID, principal.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkContractSent(ctx, contract.ID, s.now()); err != nil {
		return nil, err
	}
	contract, err = s.store.GetContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, principal.UserID, model.ActionContractSent, &contract.ID, nil, model.AuditDetails{
		"contract_number": contract.ContractNumber,
		"client_email":    contract.ClientEmail,
	})
	s.notifier.ContractSent(ctx, contract, s.SigningURL(contract.ID))

	return contract, nil
}

// SendInvoice marks a draft invoice sent and notifies the client.
func (s *DeliveryService) SendInvoice(ctx context.Context, principal model.Principal, invoiceID string) (*model.Invoice, error) {
	if err := s.gate.RequireActive(ctx, principal); err != nil {
		return nil, err
	}

	if err := s.store.MarkInvoiceSent(ctx, invoiceID, principal.UserID, s.now()); err != nil {
		return nil, err
	}
	invoice, err := s.store.GetInvoiceForUser(ctx, invoiceID, principal.UserID)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, principal.UserID, model.ActionInvoiceSent, nil, &invoice.ID, model.AuditDetails{
		"invoice_number": invoice.InvoiceNumber,
		"client_email":   invoice.ClientEmail,
	})
	s.notifier.InvoiceSent(ctx, invoice)

	return invoice, nil
}

// MarkInvoicePaid records payment against a sent invoice.
func (s *DeliveryService) MarkInvoicePaid(ctx context.Context, principal model.Principal, invoiceID string) (*model.Invoice, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthenticated
	}

	if err := s.store.MarkInvoicePaid(ctx, invoiceID, principal.UserID, s.now()); err != nil {
		return nil, err
	}
	invoice, err := s.store.GetInvoiceForUser(ctx, invoiceID, principal.UserID)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, principal.UserID, model.ActionPaymentReceived, nil, &invoice.ID, model.AuditDetails{
		"invoice_number": invoice.InvoiceNumber,
		"total":          invoice.Total,
	})

	return invoice, nil
}

// CancelContract cancels an owner's draft or sent contract.
func (s *DeliveryService) CancelContract(ctx context.Context, principal model.Principal, contractID string) error {
	if !principal.Authenticated() {
		return model.ErrUnauthenticated
	}
	return s.store.CancelContractForUser(ctx, contractID, principal.UserID)
}

// RegeneratePDF re-renders an entity's document from its current state,
// recovering from an earlier render or storage failure.
func (s *DeliveryService) RegeneratePDF(ctx context.Context, principal model.Principal, contractID string) (*model.Contract, error) {
	if err := s.gate.RequireActive(ctx, principal); err != nil {
		return nil, err
	}

	contract, err := s.store.GetContractForUser(ctx, contractID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.renderContractPDF(ctx, principal, contract); err != nil {
		return contract, err
	}
	return s.store.GetContract(ctx, contract.ID)
}

// SigningURL builds the shareable client-facing link for a contract.
func (s *DeliveryService) SigningURL(contractID string) string {
	return fmt.Sprintf("%s/api/sign/%s", s.baseURL, contractID)
}

func (s *DeliveryService) renderContractPDFBytes(ctx context.Context, principal model.Principal, contract *model.Contract) ([]byte, error) {
	data, err := s.renderer.RenderContract(contract, s.contractorParty(ctx, principal))
	if err != nil {
		return nil, &model.ExternalError{Service: model.ServiceRenderer, Err: err}
	}
	return data, nil
}

func (s *DeliveryService) renderContractPDF(ctx context.Context, principal model.Principal, contract *model.Contract) error {
	data, err := s.renderContractPDFBytes(ctx, principal, contract)
	if err != nil {
		return err
	}

	object := ObjectName(principal.UserID, contract.ID, contract.ContractNumber)
	url, err := s.blobs.StorePDF(ctx, object, data)
	if err != nil {
		slog.WarnContext(ctx, "pdf storage failed, keeping draft", "contract_id", contract.ID, "error", err)
		return &model.ExternalError{Service: model.ServiceStorage, Err: err}
	}

	if err := s.store.SetContractPDFURL(ctx, contract.ID, url); err != nil {
		return err
	}
	contract.PDFURL = &url

	s.appendAudit(ctx, principal.UserID, model.ActionPDFGenerated, &contract.ID, nil, model.AuditDetails{
		"object": object,
	})
	return nil
}

func (s *DeliveryService) renderInvoicePDF(ctx context.Context, principal model.Principal, invoice *model.Invoice) error {
	data, err := s.renderer.RenderInvoice(invoice, s.contractorParty(ctx, principal))
	if err != nil {
		return &model.ExternalError{Service: model.ServiceRenderer, Err: err}
	}

	object := ObjectName(principal.UserID, invoice.ID, invoice.InvoiceNumber)
	url, err := s.blobs.StorePDF(ctx, object, data)
	if err != nil {
		slog.WarnContext(ctx, "pdf storage failed, keeping draft", "invoice_id", invoice.ID, "error", err)
		return &model.ExternalError{Service: model.ServiceStorage, Err: err}
	}

	if err := s.store.SetInvoicePDFURL(ctx, invoice.ID, url); err != nil {
		return err
	}
	invoice.PDFURL = &url

	s.appendAudit(ctx, principal.UserID, model.ActionPDFGenerated, nil, &invoice.ID, model.AuditDetails{
		"object": object,
	})
	return nil
}

// applyInvoiceDefaults fills blank terms from the profile's invoice
// defaults. Net 30 applies when no default is configured either.
func (s *DeliveryService) applyInvoiceDefaults(ctx context.Context, principal model.Principal, in *InvoiceInput) {
	profile, err := s.store.GetProfile(ctx, principal.UserID)
	if err != nil {
		profile = nil
	}

	if strings.TrimSpace(in.PaymentTerms) == "" {
		if profile != nil && profile.DefaultPaymentTerms != "" {
			in.PaymentTerms = profile.DefaultPaymentTerms
		} else {
			in.PaymentTerms = "Net 30"
		}
	}
	if in.Notes == "" && profile != nil && profile.DefaultLateFeePct > 0 {
		in.Notes = fmt.Sprintf("Late payments are subject to a %g%% monthly fee.", profile.DefaultLateFeePct)
	}
}

// contractorParty fills the document's issuer block from the profile.
// A missing profile degrades to the account email.
func (s *DeliveryService) contractorParty(ctx context.Context, principal model.Principal) pdf.Party {
	profile, err := s.store.GetProfile(ctx, principal.UserID)
	if err != nil || profile == nil {
		return pdf.Party{Name: principal.Email, Email: principal.Email}
	}
	name := profile.FullName
	if name == "" {
		name = principal.Email
	}
	return pdf.Party{
		Name:    name,
		Company: profile.Company,
		Address: profile.Address(),
		Phone:   profile.Phone,
		Email:   principal.Email,
	}
}

// appendAudit writes an audit entry, logging instead of failing the
// operation when the write does not land.
func (s *DeliveryService) appendAudit(ctx context.Context, userID, action string, contractID, invoiceID *string, details model.AuditDetails) {
	entry := &model.AuditLog{
		UserID:     userID,
		ContractID: contractID,
		InvoiceID:  invoiceID,
		Action:     action,
		Details:    details,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit entry", "action", action, "error", err)
	}
}
