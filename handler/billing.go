package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SVG-campus/ContractKit/service"
	"github.com/gin-gonic/gin"
)

// BillingHandler drives the checkout round trip. The Stripe secret key
// stays server-side; clients only ever receive the hosted checkout URL
// and opaque session id.
type BillingHandler struct {
	gate    *service.SubscriptionService
	baseURL string
}

func NewBillingHandler(gate *service.SubscriptionService, baseURL string) *BillingHandler {
	return &BillingHandler{gate: gate, baseURL: strings.TrimRight(baseURL, "/")}
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type CheckoutRequest struct {
	PriceID string `json:"priceId"`
}

// Checkout starts a Stripe checkout session for the account. The body
// may override the price id; the customer email always comes from the
// authenticated session, never the request.
func (h *BillingHandler) Checkout(c *gin.Context) {
	principal := principalFrom(c)

	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	successURL := fmt.Sprintf("%s/billing/success?session_id={CHECKOUT_SESSION_ID}", h.baseURL)
	cancelURL := fmt.Sprintf("%s/billing/cancel", h.baseURL)

	session, err := h.gate.Checkout(c.Request.Context(), principal.Email, req.PriceID, successURL, cancelURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{URL: session.URL, SessionID: session.ID})
}

type CheckoutSuccessRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Success resolves a returned checkout session server-side and activates
// the subscription. The session id alone is not trusted.
func (h *BillingHandler) Success(c *gin.Context) {
	var req CheckoutSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	status, err := h.gate.ActivateFromCheckout(c.Request.Context(), principalFrom(c).UserID, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": status})
}

// Status returns the account's billing state.
func (h *BillingHandler) Status(c *gin.Context) {
	status, err := h.gate.Status(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": status})
}
