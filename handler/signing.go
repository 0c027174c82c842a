package handler

import (
	"net/http"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/service"
	"github.com/gin-gonic/gin"
)

// SigningHandler serves the public signing endpoints. No auth: the
// contract id in the link is the only credential, so responses expose
// nothing beyond the contract the signer was sent.
type SigningHandler struct {
	signing *service.SigningService
}

func NewSigningHandler(signing *service.SigningService) *SigningHandler {
	return &SigningHandler{signing: signing}
}

// signingView is the client-facing projection of a contract. Owner and
// storage internals stay hidden.
type signingView struct {
	ID              string                `json:"id"`
	ContractNumber  string                `json:"contract_number"`
	Status          model.ContractStatus  `json:"status"`
	ClientName      string                `json:"client_name"`
	ClientCompany   string                `json:"client_company,omitempty"`
	ProjectName     string                `json:"project_name"`
	ScopeOfWork     string                `json:"scope_of_work"`
	Deliverables    string                `json:"deliverables"`
	Timeline        string                `json:"timeline"`
	TotalAmount     float64               `json:"total_amount"`
	PaymentSchedule string                `json:"payment_schedule"`
	GoverningState  string                `json:"governing_state"`
	EffectiveDate   string                `json:"effective_date"`
	PDFURL          *string               `json:"pdf_url"`
	SignedAt        *string               `json:"signed_at,omitempty"`
}

func toSigningView(c *model.Contract) signingView {
	view := signingView{
		ID:              c.ID,
		ContractNumber:  c.ContractNumber,
		Status:          c.Status,
		ClientName:      c.ClientName,
		ClientCompany:   c.ClientCompany,
		ProjectName:     c.ProjectName,
		ScopeOfWork:     c.ScopeOfWork,
		Deliverables:    c.Deliverables,
		Timeline:        c.Timeline,
		TotalAmount:     c.TotalAmount,
		PaymentSchedule: c.PaymentSchedule,
		GoverningState:  c.GoverningState,
		EffectiveDate:   c.EffectiveDate.Format("2006-01-02"),
		PDFURL:          c.PDFURL,
	}
	if c.ClientSignedAt != nil {
		signed := c.ClientSignedAt.Format("2006-01-02T15:04:05Z07:00")
		view.SignedAt = &signed
	}
	return view
}

// Show loads the contract behind a signing link.
func (h *SigningHandler) Show(c *gin.Context) {
	contract, err := h.signing.LoadForSigning(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": toSigningView(contract)})
}

// Sign applies the client's signature.
func (h *SigningHandler) Sign(c *gin.Context) {
	var in service.SignInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	in.IPAddress = c.ClientIP()
	in.UserAgent = c.Request.UserAgent()

	contract, err := h.signing.Sign(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": toSigningView(contract)})
}
