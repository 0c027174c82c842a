package handler

import (
	"net/http"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/service"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	store    *store.Store
	delivery *service.DeliveryService
}

func NewInvoiceHandler(st *store.Store, delivery *service.DeliveryService) *InvoiceHandler {
	return &InvoiceHandler{store: st, delivery: delivery}
}

// invoiceView decorates an invoice with its derived display status.
type invoiceView struct {
	*model.Invoice
	DisplayStatus model.InvoiceStatus `json:"display_status"`
}

func viewOf(invoice *model.Invoice, now time.Time) invoiceView {
	return invoiceView{Invoice: invoice, DisplayStatus: invoice.DisplayStatus(now)}
}

// Create runs the invoice pipeline: totals, draft, PDF, storage.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var in service.InvoiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	invoice, err := h.delivery.CreateInvoice(c.Request.Context(), principalFrom(c), in)
	if err != nil {
		if invoice != nil {
			c.JSON(http.StatusCreated, gin.H{
				"invoice": viewOf(invoice, time.Now()),
				"warning": "PDF generation failed; regenerate later",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": viewOf(invoice, time.Now())})
}

// List returns the account's invoices with display statuses.
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.store.ListInvoices(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	views := make([]invoiceView, len(invoices))
	for i := range invoices {
		views[i] = viewOf(&invoices[i], now)
	}
	c.JSON(http.StatusOK, gin.H{"invoices": views})
}

// Get returns one invoice.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.store.GetInvoiceForUser(c.Request.Context(), c.Param("id"), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": viewOf(invoice, time.Now())})
}

// Send marks a draft invoice sent.
func (h *InvoiceHandler) Send(c *gin.Context) {
	invoice, err := h.delivery.SendInvoice(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": viewOf(invoice, time.Now())})
}

// MarkPaid records payment against a sent invoice.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoice, err := h.delivery.MarkInvoicePaid(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": viewOf(invoice, time.Now())})
}
