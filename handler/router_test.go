package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SVG-campus/ContractKit/config"
	"github.com/SVG-campus/ContractKit/middleware"
	"github.com/SVG-campus/ContractKit/pdf"
	"github.com/SVG-campus/ContractKit/service"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeBlobStore keeps uploads in memory.
type fakeBlobStore struct {
	fail bool
}

func (b *fakeBlobStore) StorePDF(ctx context.Context, objectName string, data []byte) (string, error) {
	if b.fail {
		return "", errors.New("connection refused")
	}
	return "http://blob.test/documents/" + objectName, nil
}

// testServer wires the whole API against in-memory collaborators.
type testServer struct {
	router *gin.Engine
	store  *store.Store
	cfg    *config.Config
	gate   *service.SubscriptionService
	blobs  *fakeBlobStore
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithStripe(t, nil)
}

func newTestServerWithStripe(t *testing.T, stripe *service.StripeService) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	st, err := store.New(db)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenExpireHours = 24
	cfg.Trial.Days = 14

	gate := service.NewSubscriptionService(st, stripe, cfg.Trial.Days)
	versions := service.NewVersionService(st)
	blobs := &fakeBlobStore{}
	notifier := service.NewLogNotifier()
	delivery := service.NewDeliveryService(st, gate, versions, pdf.NewRenderer(), blobs, notifier, cfg.Server.BaseURL)
	signing := service.NewSigningService(st, nil, notifier)

	authHandler := NewAuthHandler(cfg, st, gate)
	profileHandler := NewProfileHandler(st)
	contractHandler := NewContractHandler(st, delivery, versions)
	invoiceHandler := NewInvoiceHandler(st, delivery)
	signingHandler := NewSigningHandler(signing)
	billingHandler := NewBillingHandler(gate, cfg.Server.BaseURL)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	api := router.Group("/api")
	{
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)
		api.GET("/sign/:id", signingHandler.Show)
		api.POST("/sign/:id", signingHandler.Sign)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/profile", profileHandler.Get)
		protected.PUT("/profile", profileHandler.Save)

		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.POST("/contracts/:id/send", contractHandler.Send)
		protected.POST("/contracts/:id/cancel", contractHandler.Cancel)
		protected.GET("/contracts/:id/versions", contractHandler.Versions)
		protected.POST("/contracts/:id/pdf", contractHandler.RegeneratePDF)
		protected.GET("/contracts/:id/audit", contractHandler.Audit)

		protected.POST("/invoices", invoiceHandler.Create)
		protected.GET("/invoices", invoiceHandler.List)
		protected.GET("/invoices/:id", invoiceHandler.Get)
		protected.POST("/invoices/:id/send", invoiceHandler.Send)
		protected.POST("/invoices/:id/pay", invoiceHandler.MarkPaid)

		protected.POST("/billing/checkout", billingHandler.Checkout)
		protected.POST("/billing/success", billingHandler.Success)
		protected.GET("/billing/subscription", billingHandler.Status)
	}

	return &testServer{router: router, store: st, cfg: cfg, gate: gate, blobs: blobs}
}

// do sends a JSON request, optionally authenticated.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers an account and returns its token. New accounts start
// on trial, so they pass the subscription gate.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()

	w := s.do(t, "POST", "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Signup failed with status %d: %s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode signup response: %v", err)
	}
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("Failed to decode response %s: %v", w.Body.String(), err)
	}
}

func contractBody() map[string]any {
	return map[string]any{
		"client_name":        "Acme Co",
		"client_email":       "client@acme.test",
		"project_name":       "Brand Refresh",
		"scope_of_work":      "Design a new visual identity.",
		"deliverables":       "Logo files, brand guide",
		"timeline":           "6 weeks",
		"total_amount":       5000,
		"payment_schedule":   "50% deposit, 50% on delivery",
		"revisions_included": 3,
		"governing_state":    "Oregon",
	}
}

func invoiceBody() map[string]any {
	return map[string]any{
		"client_name":  "Acme Co",
		"client_email": "client@acme.test",
		"line_items": []map[string]any{
			{"description": "Logo design", "quantity": 2, "rate": 100},
			{"description": "Brand guide", "quantity": 1, "rate": 50},
		},
		"tax_rate":      10,
		"payment_terms": "Net 30",
	}
}
