package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
	"github.com/dalemusser/slothstore/internal/app/system/auditlog"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "test")
	logger.OrderPlaced(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), 1, 10)
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "off", Admin: "off", Order: "off"})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
	})

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigLogOnlySkipsDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "log"})
	logger.PasswordChanged(ctx, httptest.NewRequest("PATCH", "/", nil), userID)

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no stored events for 'log', got %d", len(events))
	}
}

func TestLogger_OrderStatusChanged_StoresDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	orderID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Order: "db"})

	req := httptest.NewRequest("PATCH", "/api/orders/status", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	logger.OrderStatusChanged(ctx, req, actor, owner, orderID, 2, 3)

	events, err := store.GetByUser(ctx, owner, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Category != audit.CategoryOrder || e.EventType != audit.EventOrderStatusChanged {
		t.Errorf("unexpected event %s/%s", e.Category, e.EventType)
	}
	if e.ActorID == nil || *e.ActorID != actor {
		t.Errorf("actor not recorded")
	}
	if e.IP != "203.0.113.9" {
		t.Errorf("IP: got %q, want 203.0.113.9", e.IP)
	}
	if e.Details["order_id"] != orderID.Hex() || e.Details["from"] != "2" || e.Details["to"] != "3" {
		t.Errorf("unexpected details: %v", e.Details)
	}
}
