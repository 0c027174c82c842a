package handler

import (
	"net/http"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	store *store.Store
}

func NewProfileHandler(st *store.Store) *ProfileHandler {
	return &ProfileHandler{store: st}
}

type ProfileRequest struct {
	FullName            string  `json:"full_name" binding:"required"`
	Company             string  `json:"company"`
	AddressLine         string  `json:"address_line"`
	City                string  `json:"city"`
	State               string  `json:"state"`
	ZipCode             string  `json:"zip_code"`
	Phone               string  `json:"phone"`
	DefaultPaymentTerms string  `json:"default_payment_terms"`
	DefaultLateFeePct   float64 `json:"default_late_fee_pct"`
}

// Get returns the account's profile, or an empty one before first save.
func (h *ProfileHandler) Get(c *gin.Context) {
	principal := principalFrom(c)

	profile, err := h.store.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		profile = &model.Profile{UserID: principal.UserID}
	}

	c.JSON(http.StatusOK, profile)
}

// Save upserts the account's profile.
func (h *ProfileHandler) Save(c *gin.Context) {
	principal := principalFrom(c)

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	profile := &model.Profile{
		UserID:              principal.UserID,
		FullName:            req.FullName,
		Company:             req.Company,
		AddressLine:         req.AddressLine,
		City:                req.City,
		State:               req.State,
		ZipCode:             req.ZipCode,
		Phone:               req.Phone,
		DefaultPaymentTerms: req.DefaultPaymentTerms,
		DefaultLateFeePct:   req.DefaultLateFeePct,
	}
	if err := h.store.UpsertProfile(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}

	saved, err := h.store.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}
