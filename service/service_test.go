package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/pdf"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *store.Store {
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
	return st
}

// fakeBlobStore keeps uploads in memory and can be told to fail.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (b *fakeBlobStore) StorePDF(ctx context.Context, objectName string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return "", errors.New("connection refused")
	}
	b.objects[objectName] = data
	return "http://blob.test/documents/" + objectName, nil
}

// fakeNotifier records notification calls.
type fakeNotifier struct {
	mu            sync.Mutex
	contractsSent []string
	signed        []string
	invoicesSent  []string
}

func (n *fakeNotifier) ContractSent(ctx context.Context, c *model.Contract, signingURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contractsSent = append(n.contractsSent, c.ID)
}

func (n *fakeNotifier) ContractSigned(ctx context.Context, c *model.Contract) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signed = append(n.signed, c.ID)
}

func (n *fakeNotifier) InvoiceSent(ctx context.Context, inv *model.Invoice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invoicesSent = append(n.invoicesSent, inv.ID)
}

// testEnv wires the delivery pipeline against in-memory collaborators.
type testEnv struct {
	store    *store.Store
	gate     *SubscriptionService
	versions *VersionService
	delivery *DeliveryService
	signing  *SigningService
	blobs    *fakeBlobStore
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newTestStore(t)
	gate := NewSubscriptionService(st, nil, 14)
	versions := NewVersionService(st)
	blobs := newFakeBlobStore()
	notifier := &fakeNotifier{}
	delivery := NewDeliveryService(st, gate, versions, pdf.NewRenderer(), blobs, notifier, "http://localhost:8080")
	signing := NewSigningService(st, nil, notifier)

	return &testEnv{
		store:    st,
		gate:     gate,
		versions: versions,
		delivery: delivery,
		signing:  signing,
		blobs:    blobs,
		notifier: notifier,
	}
}

// activeUser creates an account with an active subscription.
func (e *testEnv) activeUser(t *testing.T, email string) model.Principal {
	t.Helper()
	ctx := context.Background()

	user := &model.User{Email: email, PasswordHash: "hash"}
	if err := e.store.CreateUser(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if _, err := e.store.CreateTrial(ctx, user.ID, time.Now().Add(14*24*time.Hour)); err != nil {
		t.Fatalf("Failed to create trial: %v", err)
	}
	if err := e.store.ActivateSubscription(ctx, user.ID, "cus_test", "sub_test", nil); err != nil {
		t.Fatalf("Failed to activate subscription: %v", err)
	}
	return model.Principal{UserID: user.ID, Email: email}
}

// trialUser creates an account whose trial ends at trialEnd.
func (e *testEnv) trialUser(t *testing.T, email string, trialEnd time.Time) model.Principal {
	t.Helper()
	ctx := context.Background()

	user := &model.User{Email: email, PasswordHash: "hash"}
	if err := e.store.CreateUser(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if _, err := e.store.CreateTrial(ctx, user.ID, trialEnd); err != nil {
		t.Fatalf("Failed to create trial: %v", err)
	}
	return model.Principal{UserID: user.ID, Email: email}
}

func contractInput() ContractInput {
	return ContractInput{
		ClientName:        "Acme Co",
		ClientEmail:       "client@acme.test",
		ProjectName:       "Brand Refresh",
		ScopeOfWork:       "Design a new visual identity.",
		Deliverables:      "Logo files, brand guide",
		Timeline:          "6 weeks",
		TotalAmount:       5000,
		PaymentSchedule:   "50% deposit, 50% on delivery",
		RevisionsIncluded: 3,
		GoverningState:    "Oregon",
	}
}

func invoiceInput() InvoiceInput {
	return InvoiceInput{
		ClientName:  "Acme Co",
		ClientEmail: "client@acme.test",
		LineItems: []model.LineItem{
			{Description: "Logo design", Quantity: 2, Rate: 100},
			{Description: "Brand guide", Quantity: 1, Rate: 50},
		},
		TaxRate:      10,
		PaymentTerms: "Net 30",
	}
}
