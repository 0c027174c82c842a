package handler

import (
	"net/http"

	"github.com/SVG-campus/ContractKit/service"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	store    *store.Store
	delivery *service.DeliveryService
	versions *service.VersionService
}

func NewContractHandler(st *store.Store, delivery *service.DeliveryService, versions *service.VersionService) *ContractHandler {
	return &ContractHandler{store: st, delivery: delivery, versions: versions}
}

// Create runs the full pipeline: draft, version 1, PDF, storage.
func (h *ContractHandler) Create(c *gin.Context) {
	var in service.ContractInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contract, err := h.delivery.CreateContract(c.Request.Context(), principalFrom(c), in)
	if err != nil {
		// A render or storage failure still produced a draft
		if contract != nil {
			c.JSON(http.StatusCreated, gin.H{
				"contract": contract,
				"warning":  "PDF generation failed; regenerate later",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract})
}

// List returns the account's contracts, newest first.
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.store.ListContracts(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

// Get returns one contract with its signing link.
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.store.GetContractForUser(c.Request.Context(), c.Param("id"), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract":    contract,
		"signing_url": h.delivery.SigningURL(contract.ID),
	})
}

// Update applies new terms and records the next version.
func (h *ContractHandler) Update(c *gin.Context) {
	var req struct {
		service.ContractInput
		ChangeDescription string `json:"change_description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contract, err := h.delivery.UpdateContract(c.Request.Context(), principalFrom(c), c.Param("id"), req.ContractInput, req.ChangeDescription)
	if err != nil {
		if contract != nil {
			c.JSON(http.StatusOK, gin.H{
				"contract": contract,
				"warning":  "PDF generation failed; regenerate later",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

// Send marks the contract sent and emails the signing link.
func (h *ContractHandler) Send(c *gin.Context) {
	contract, err := h.delivery.SendContract(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract":    contract,
		"signing_url": h.delivery.SigningURL(contract.ID),
	})
}

// Cancel voids a draft or sent contract.
func (h *ContractHandler) Cancel(c *gin.Context) {
	if err := h.delivery.CancelContract(c.Request.Context(), principalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// Versions returns the contract's history, newest first.
func (h *ContractHandler) Versions(c *gin.Context) {
	versions, err := h.versions.List(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// RegeneratePDF re-renders the contract document.
func (h *ContractHandler) RegeneratePDF(c *gin.Context) {
	contract, err := h.delivery.RegeneratePDF(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

// Audit returns the contract's audit trail, newest first.
func (h *ContractHandler) Audit(c *gin.Context) {
	principal := principalFrom(c)

	// Ownership check before exposing the trail
	if _, err := h.store.GetContractForUser(c.Request.Context(), c.Param("id"), principal.UserID); err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.store.AuditForContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": entries})
}
